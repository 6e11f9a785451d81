// SPDX-License-Identifier: MPL-2.0

// Package environment converts parsed environment files into runtime
// environment descriptors: the flat, validated view a host package manager
// consumes. Single-environment documents convert directly; multi-environment
// documents are composed from the groups the selected environment references,
// in declaration order.
package environment
