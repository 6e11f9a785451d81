// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type Id int

const (
	EnvFileNotFoundId Id = iota + 1
	EnvFileParseErrorId
	UnsupportedSchemaVersionId
	AmbiguousShapeId
	UndefinedGroupsId
	UnknownEnvironmentId
	ConfigLoadFailedId
	FileTooLargeId
)

type MarkdownMsg string

type HttpLink string

type Renderer interface {
	Render(in string, stylePath string) (string, error)
}

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink  // must never be empty, because we need to have docs about all issue types
	extLinks []HttpLink  // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		extraMd += "\n\n"
		extraMd += "## See also: "
		for _, link := range i.docLinks {
			extraMd += "- [" + string(link) + "]"
		}
		for _, link := range i.extLinks {
			extraMd += "- [" + string(link) + "]"
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

var (
	render = glamour.Render

	envFileNotFoundIssue = &Issue{
		id: EnvFileNotFoundId,
		mdMsg: `
# No environment file found!

We searched for an environment file but couldn't find one in the expected
locations.

## Search locations (in order of precedence):
1. Path given with --file
2. Current directory (denv.toml, environment.toml)
3. Parent directories, when discovery.search_parents is enabled

## Things you can try:
- Create an environment file in your current directory:
~~~
$ denv init
~~~

- Or point at an existing one:
~~~
$ denv validate --file /path/to/denv.toml
~~~

## Example environment file:
~~~toml
[about]
name = "myproject"
revision = "1"
description = "My project environment"

[about.urls]
homepage = "https://example.com/myproject"

[config]
channels = ["conda-forge"]

[dependencies]
python = "3.11.*"
~~~`,
	}

	envFileParseErrorIssue = &Issue{
		id: EnvFileParseErrorId,
		mdMsg: `
# Failed to parse environment file!

Your environment file contains syntax errors or invalid configuration.

## Common issues:
- Invalid TOML syntax (unterminated strings, stray brackets)
- Unknown keys inside a section (sections are closed)
- Missing required sections ([about], [config], [about.urls])
- A dependency table mixing 'path' with 'version'

## Things you can try:
- Check the error message above for the specific line and column
- Run with verbose mode for more details:
~~~
$ denv --verbose validate
~~~

## Example of a valid dependency section:
~~~toml
[dependencies]
python = "3.11.*"
numpy = { version = ">=1.21", channel = "conda-forge" }
mylib = { path = "../mylib", editable = true }
~~~`,
	}

	unsupportedSchemaVersionIssue = &Issue{
		id: UnsupportedSchemaVersionId,
		mdMsg: `
# Unsupported schema version!

The environment file declares a schema version this build does not
understand.

## Things you can try:
- Update denv to the latest release
- Set the version back to a supported one:
~~~toml
version = 1
~~~`,
	}

	ambiguousShapeIssue = &Issue{
		id: AmbiguousShapeId,
		mdMsg: `
# Ambiguous document shape!

An environment file is either single-environment (top-level [dependencies])
or multi-environment ([groups] plus [environments]), never both.

## Things you can try:
- Move top-level [dependencies] into a group:
~~~toml
[groups.base.config]
[groups.base.dependencies]
python = "3.11.*"

[environments]
default = ["base"]
~~~

- Or remove [groups] and [environments] to keep a single-environment file`,
	}

	undefinedGroupsIssue = &Issue{
		id: UndefinedGroupsId,
		mdMsg: `
# Undefined groups referenced!

One or more environments reference groups that are not defined in the file.

## Things you can try:
- Check the group names in [environments] for typos
- Define the missing groups:
~~~toml
[groups.dev.config]
[groups.dev.dependencies]
pytest = ">=8"
~~~

- Or drop the reference from the environment's group list`,
	}

	unknownEnvironmentIssue = &Issue{
		id: UnknownEnvironmentId,
		mdMsg: `
# Unknown environment!

The environment you asked for is not defined in the environment file.

## Things you can try:
- List the environments the file defines:
~~~
$ denv envs
~~~

- Check for typos in the environment name
- Use tab completion:
~~~
$ denv show <TAB>
~~~`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

Could not load the denv configuration file.

## Configuration file locations:
- Linux: ~/.config/denv/config.cue
- macOS: ~/Library/Application Support/denv/config.cue
- Windows: %APPDATA%\denv\config.cue

## Things you can try:
- Create a default configuration:
~~~
$ denv config init
~~~

- Check the configuration syntax
- Remove the config file to use defaults:
~~~
$ rm ~/.config/denv/config.cue
~~~

## Example configuration:
~~~cue
ui: {
	color: "auto"
	verbose: false
}

validation: {
	warnings_as_errors: false
}

discovery: {
	search_names: ["denv.toml", "environment.toml"]
	search_parents: true
}
~~~`,
	}

	fileTooLargeIssue = &Issue{
		id: FileTooLargeId,
		mdMsg: `
# Environment file too large!

The environment file exceeds the configured size limit.

## Things you can try:
- Split the file into smaller, per-project environment files
- Raise the limit in your configuration:
~~~cue
validation: {
	max_file_size: 10485760  // bytes
}
~~~`,
	}

	issues = map[Id]*Issue{
		envFileNotFoundIssue.Id():          envFileNotFoundIssue,
		envFileParseErrorIssue.Id():        envFileParseErrorIssue,
		unsupportedSchemaVersionIssue.Id(): unsupportedSchemaVersionIssue,
		ambiguousShapeIssue.Id():           ambiguousShapeIssue,
		undefinedGroupsIssue.Id():          undefinedGroupsIssue,
		unknownEnvironmentIssue.Id():       unknownEnvironmentIssue,
		configLoadFailedIssue.Id():         configLoadFailedIssue,
		fileTooLargeIssue.Id():             fileTooLargeIssue,
	}
)

func Values() []*Issue {
	return maps.Values(issues)
}

func Get(id Id) *Issue {
	return issues[id]
}
