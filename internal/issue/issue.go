// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"cmp"
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/glamour"
)

type Id int

const (
	ParentPackageNotFoundId Id = iota + 1
	PackageNotFoundId
	MissingEntryPointId
	EntryPointNotFoundId
	InvalidSpecifierId
	ConfigLoadFailedId
	WatchFailedId
	PermissionDeniedId
)

type MarkdownMsg string

type HttpLink string

type Renderer interface {
	Render(in string, stylePath string) (string, error)
}

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink
	extLinks []HttpLink // external links that might be useful for the user
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
	var md strings.Builder
	md.WriteString(string(i.mdMsg))
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		md.WriteString("\n\n## See also\n")
		for _, link := range i.docLinks {
			md.WriteString("\n- <" + string(link) + ">")
		}
		for _, link := range i.extLinks {
			md.WriteString("\n- <" + string(link) + ">")
		}
	}
	return render(md.String(), stylePath)
}

var (
	render = glamour.Render

	nodeResolutionLink HttpLink = "https://nodejs.org/api/modules.html#loading-from-node_modules-folders"

	parentPackageNotFoundIssue = &Issue{
		id: ParentPackageNotFoundId,
		mdMsg: `
# No package.json encloses the importing file!

Bare imports are looked up in the ` + "`node_modules`" + ` directories of the
package that contains the importing file. No ` + "`package.json`" + ` was found in
the importing file's directory or any of its parents.

## Things you can try:
- Run the command from inside your project, or pass the importer explicitly:
~~~
$ nextmain resolve somepkg --from ./src/index.js
~~~

- Add a search root that contains a package.json:
~~~
$ nextmain resolve somepkg --root ~/projects/app
~~~

- Create a manifest for the project:
~~~
$ npm init -y
~~~`,
		docLinks: []HttpLink{nodeResolutionLink},
	}

	packageNotFoundIssue = &Issue{
		id: PackageNotFoundId,
		mdMsg: `
# Package not installed!

The package named by the import is not present in any ` + "`node_modules`" + `
directory visible from the importing file.

## Things you can try:
- Install the package:
~~~
$ npm install somepkg
~~~

- Check for typos in the package name and its scope (` + "`@scope/name`" + `)
- Node core modules such as ` + "`fs`" + ` or ` + "`node:path`" + ` have no installed file
  and are never resolved`,
		docLinks: []HttpLink{nodeResolutionLink},
	}

	missingEntryPointIssue = &Issue{
		id: MissingEntryPointId,
		mdMsg: `
# Package does not declare "jsnext:main"!

The package was found, but its package.json has no usable ` + "`jsnext:main`" + `
field. The field must be a non-empty string. There is no fallback to
` + "`main`" + ` or ` + "`module`" + `.

## Things you can try:
- Check whether a newer version of the package ships an ES module build
- Ask the package maintainers to publish one, for example:
~~~json
{
  "name": "somepkg",
  "main": "index.js",
  "jsnext:main": "es/index.js"
}
~~~

- Let another resolver handle this import`,
	}

	entryPointNotFoundIssue = &Issue{
		id: EntryPointNotFoundId,
		mdMsg: `
# "jsnext:main" points at a missing file!

The package declares ` + "`jsnext:main`" + `, but the file it names does not exist
relative to the package.json directory. The installation is usually stale or
the package was published without its ES build.

## Things you can try:
- Reinstall the package:
~~~
$ rm -rf node_modules/somepkg && npm install
~~~

- Inspect the installed files:
~~~
$ ls node_modules/somepkg
~~~`,
	}

	invalidSpecifierIssue = &Issue{
		id: InvalidSpecifierId,
		mdMsg: `
# Invalid import specifier!

Specifiers must be non-empty. Relative specifiers (starting with ` + "`.`" + `)
are left to the host and never resolved here.

## Examples:
~~~
$ nextmain resolve lodash-es
$ nextmain resolve @scope/pkg/sub/path
~~~`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

The configuration file could not be read or does not match the schema.

## Things you can try:
- Show where the file is expected:
~~~
$ nextmain config path
~~~

- Write a fresh default configuration:
~~~
$ nextmain config init
~~~

- Check the CUE syntax and field types, for example:
~~~cue
roots: ["~/projects/app"]
manifest_cache_size: 1024
extensions: [".js", ".json", ".node"]
~~~`,
	}

	watchFailedIssue = &Issue{
		id: WatchFailedId,
		mdMsg: `
# File watching failed!

The watcher could not subscribe to file system events.

## Things you can try:
- Raise the inotify watch limit on Linux:
~~~
$ sudo sysctl fs.inotify.max_user_watches=524288
~~~

- Narrow the watched patterns in your configuration:
~~~cue
watch: patterns: ["**/package.json"]
~~~`,
	}

	permissionDeniedIssue = &Issue{
		id: PermissionDeniedId,
		mdMsg: `
# Permission denied!

A package.json or entry file could not be read.

## Things you can try:
- Check the permissions of the ` + "`node_modules`" + ` tree
- Reinstall dependencies as your own user rather than root`,
	}

	issues = map[Id]*Issue{
		parentPackageNotFoundIssue.Id(): parentPackageNotFoundIssue,
		packageNotFoundIssue.Id():       packageNotFoundIssue,
		missingEntryPointIssue.Id():     missingEntryPointIssue,
		entryPointNotFoundIssue.Id():    entryPointNotFoundIssue,
		invalidSpecifierIssue.Id():      invalidSpecifierIssue,
		configLoadFailedIssue.Id():      configLoadFailedIssue,
		watchFailedIssue.Id():           watchFailedIssue,
		permissionDeniedIssue.Id():      permissionDeniedIssue,
	}
)

// Values returns every catalog entry ordered by Id.
func Values() []*Issue {
	out := slices.Collect(maps.Values(issues))
	slices.SortFunc(out, func(a, b *Issue) int { return cmp.Compare(a.id, b.id) })
	return out
}

func Get(id Id) *Issue {
	return issues[id]
}
