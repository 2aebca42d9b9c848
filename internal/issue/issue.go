// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type Id int

const (
	ManifestNotFoundId Id = iota + 1
	ManifestParseErrorId
	DescriptorNotFoundId
	DescriptorParseErrorId
	EngineNotFoundId
	BuildFailedId
	ValidationFailedId
	ConfigLoadFailedId
	OutputCollisionId
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

	manifestNotFoundIssue = &Issue{
		id: ManifestNotFoundId,
		mdMsg: `
# No filter manifest found!

Packaging needs a filter manifest that lists which files ship in the archive.

## Expected location:
~~~
<plugin root>/Config/FilterPlugin.ini
~~~

## Example manifest:
~~~ini
[FilterPlugin]
/README.md
/Source/...
/Resources/Icon*.png
~~~

Each line is a path pattern relative to the plugin root. A trailing ` + "`/...`" + `
includes a whole directory tree.`,
	}

	manifestParseErrorIssue = &Issue{
		id: ManifestParseErrorId,
		mdMsg: `
# Failed to parse the filter manifest!

Config/FilterPlugin.ini exists but could not be read as an INI file with a
[FilterPlugin] section.

## Common issues:
- Missing the ` + "`[FilterPlugin]`" + ` section header
- A section header other than ` + "`[FilterPlugin]`" + `
- Stray ` + "`=`" + ` signs: entries are bare patterns, not key=value pairs

## Things you can try:
- Start lines with ` + "`;`" + ` for comments
- Keep one pattern per line under the section header`,
	}

	descriptorNotFoundIssue = &Issue{
		id: DescriptorNotFoundId,
		mdMsg: `
# No plugin descriptor found!

The plugin root must contain exactly one ` + "`.uplugin`" + ` file.

## Things you can try:
- Run upack from the plugin's root directory
- Pass the plugin location explicitly:
~~~
$ upack package /path/to/MyPlugin
~~~

- If several ` + "`.uplugin`" + ` files exist, point at the right one:
~~~
$ upack package /path/to/MyPlugin/MyPlugin.uplugin
~~~`,
	}

	descriptorParseErrorIssue = &Issue{
		id: DescriptorParseErrorId,
		mdMsg: `
# Failed to parse the plugin descriptor!

The ` + "`.uplugin`" + ` file is not valid JSON.

## Things you can try:
- Check for trailing commas and unquoted keys
- Validate the file with any JSON linter
- Regenerate the descriptor from the editor's plugin wizard`,
	}

	engineNotFoundIssue = &Issue{
		id: EngineNotFoundId,
		mdMsg: `
# Engine installation not found!

The requested Unreal Engine version is not installed where upack looked.

## Search locations:
- Windows: ` + "`C:\\Program Files\\Epic Games\\UE_<version>`" + `
- macOS: ` + "`/Users/Shared/Epic Games/UE_<version>`" + `
- Linux: ` + "`~/.local/share/Epic Games/UE_<version>`" + `

## Things you can try:
- Install the engine version through the Epic Games Launcher
- Point upack at a custom install location:
~~~
$ export UPACK_ENGINE_BASE_DIR=/opt/engines
~~~

- Or set it once in the config file:
~~~
$ upack config init
~~~

- List the versions upack can see:
~~~
$ upack versions
~~~`,
	}

	buildFailedIssue = &Issue{
		id: BuildFailedId,
		mdMsg: `
# Plugin compilation failed!

The engine's BuildPlugin command did not produce a working build.

## Common causes:
- C++ compile errors in the plugin source
- Missing engine modules the plugin depends on
- A toolchain mismatch between plugin and engine version

## Things you can try:
- Read the build output above for the first error
- Compile against a single version to iterate faster:
~~~
$ upack compile --engine-version 5.3
~~~

- Check that the plugin's listed module dependencies exist in that engine`,
	}

	validationFailedIssue = &Issue{
		id: ValidationFailedId,
		mdMsg: `
# Marketplace validation failed!

One or more marketplace rules rejected the staged plugin. Packaging stops
before any archive is produced.

## The rules:
- The descriptor's FabURL must contain the product UUID
- Every path, prefixed with the plugin name, must stay within 170 characters
- First-party source files must open with a copyright notice
- No shell scripts, batch files, or executables anywhere in the bundle

## Things you can try:
- Fix each finding listed above and re-run
- Re-check a fix without packaging:
~~~
$ upack validate
~~~`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

Could not load the upack configuration file.

## Configuration file locations:
- Linux: ~/.config/upack/config.toml
- macOS: ~/Library/Application Support/upack/config.toml
- Windows: %APPDATA%\upack\config.toml

## Things you can try:
- Create a default configuration:
~~~
$ upack config init
~~~

- Check the configuration syntax
- Remove the config file to use defaults

## Example configuration:
~~~toml
engine_base_dir = "/opt/engines"
output_dir = "dist"
default_versions = ["5.3", "5.4", "5.5"]

[ui]
verbose = false
~~~`,
	}

	outputCollisionIssue = &Issue{
		id: OutputCollisionId,
		mdMsg: `
# Staging target already exists!

The directory the plugin would be staged into is already present, so staging
refuses to run rather than mix old and new files.

## Things you can try:
- Remove the stale staging directory and re-run
- Stage into a different destination directory`,
	}

	issues = map[Id]*Issue{
		manifestNotFoundIssue.Id():     manifestNotFoundIssue,
		manifestParseErrorIssue.Id():   manifestParseErrorIssue,
		descriptorNotFoundIssue.Id():   descriptorNotFoundIssue,
		descriptorParseErrorIssue.Id(): descriptorParseErrorIssue,
		engineNotFoundIssue.Id():       engineNotFoundIssue,
		buildFailedIssue.Id():          buildFailedIssue,
		validationFailedIssue.Id():     validationFailedIssue,
		configLoadFailedIssue.Id():     configLoadFailedIssue,
		outputCollisionIssue.Id():      outputCollisionIssue,
	}
)

func Values() []*Issue {
	return maps.Values(issues)
}

func Get(id Id) *Issue {
	return issues[id]
}
