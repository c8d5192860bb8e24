// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Id identifies a known failure mode.
type Id int

const (
	EntryNotFoundId Id = iota + 1
	ModuleReadFailedId
	ModuleParseFailedId
	ModuleTransformFailedId
	CycleSuspectedId
	BundleWriteFailedId
	ConfigLoadFailedId
	BundleEvalFailedId
)

// MarkdownMsg is remediation guidance in Markdown, rendered before display.
type MarkdownMsg string

// HttpLink points at documentation for an issue.
type HttpLink string

// Issue is one registered failure mode with its guidance.
type Issue struct {
	id       Id          // ID used to look up the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink  // documentation links
	extLinks []HttpLink  // external references (specs, upstream docs)
}

// Id returns the issue's identifier.
func (i *Issue) Id() Id {
	return i.id
}

// MarkdownMsg returns the raw Markdown guidance.
func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

// DocLinks returns a copy of the issue's documentation links.
func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

// ExtLinks returns a copy of the issue's external references.
func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

// Render renders the issue's guidance (plus its links) with the given
// glamour style.
func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if len(i.docLinks)+len(i.extLinks) > 0 {
		extraMd += "\n\n## See also\n"
		for _, link := range i.docLinks {
			extraMd += "- <" + string(link) + ">\n"
		}
		for _, link := range i.extLinks {
			extraMd += "- <" + string(link) + ">\n"
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

var (
	render = glamour.Render

	entryNotFoundIssue = &Issue{
		id: EntryNotFoundId,
		mdMsg: `
# Entry file not found

The entry module passed to the bundler does not exist or cannot be read.

## Things you can try
- Check the path for typos:
~~~
$ bindle build ./src/index.js
~~~
- Relative entry paths are resolved against the current directory.`,
		docLinks: []HttpLink{"https://github.com/bindle-sh/bindle/blob/main/docs/errors.md#entry-not-found"},
	}

	moduleReadFailedIssue = &Issue{
		id: ModuleReadFailedId,
		mdMsg: `
# Imported module could not be read

A module named in an import statement does not resolve to a readable file.

## Things you can try
- Check the specifier against the importing file's directory; specifiers are
  resolved relative to their importer.
- Extension-less specifiers are probed with the configured extensions
  (` + "`.js`, `.mjs`" + ` by default) and ` + "`index.js`" + `.`,
		docLinks: []HttpLink{"https://github.com/bindle-sh/bindle/blob/main/docs/errors.md#module-read-failed"},
	}

	moduleParseFailedIssue = &Issue{
		id: ModuleParseFailedId,
		mdMsg: `
# Module could not be parsed

A module declaration (import/export) in the reported file is malformed.

## Things you can try
- The diagnostic carries the file, line and column of the offending
  declaration; fix the statement there.
- Only static, statement-level import/export forms are bundled.`,
		docLinks: []HttpLink{"https://github.com/bindle-sh/bindle/blob/main/docs/errors.md#module-parse-failed"},
		extLinks: []HttpLink{"https://developer.mozilla.org/en-US/docs/Web/JavaScript/Reference/Statements/import"},
	}

	moduleTransformFailedIssue = &Issue{
		id: ModuleTransformFailedId,
		mdMsg: `
# Module could not be transformed

The file's module syntax was rewritten, but the result does not compile —
usually a plain syntax error in the original source.

## Things you can try
- The diagnostic includes the engine's position information; fix the syntax
  error it points at.`,
		docLinks: []HttpLink{"https://github.com/bindle-sh/bindle/blob/main/docs/errors.md#module-transform-failed"},
	}

	cycleSuspectedIssue = &Issue{
		id: CycleSuspectedId,
		mdMsg: `
# Import cycle suspected

Compat mode rebuilds every imported file, so a circular import chain grows
the module worklist without bound. The build stopped at the configured
ceiling instead of hanging.

## Things you can try
- Drop ` + "`--compat`" + `: the default mode deduplicates shared modules and
  resolves cycles by reusing identities.
- Raise ` + "`--max-modules`" + ` if the project genuinely has more modules
  than the ceiling.`,
		docLinks: []HttpLink{"https://github.com/bindle-sh/bindle/blob/main/docs/errors.md#cycle-suspected"},
	}

	bundleWriteFailedIssue = &Issue{
		id: BundleWriteFailedId,
		mdMsg: `
# Bundle could not be written

The finished bundle could not be persisted at the output path.

## Things you can try
- Check that the output directory exists and is writable.
- Pass a different location with ` + "`-o`" + `.`,
		docLinks: []HttpLink{"https://github.com/bindle-sh/bindle/blob/main/docs/errors.md#bundle-write-failed"},
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Configuration could not be loaded

The bindle config file exists but does not validate against the schema.

## Things you can try
- The diagnostic names the offending field; compare it against
  ` + "`bindle init`" + `'s starter config.
- Delete the file to fall back to defaults.`,
		docLinks: []HttpLink{"https://github.com/bindle-sh/bindle/blob/main/docs/errors.md#config-load-failed"},
	}

	bundleEvalFailedIssue = &Issue{
		id: BundleEvalFailedId,
		mdMsg: `
# Bundle failed while running

The bundle was built, but a module body threw while executing.

## Things you can try
- The error message and stack come from your modules; the failing require
  chain aborts at the first throw.`,
		docLinks: []HttpLink{"https://github.com/bindle-sh/bindle/blob/main/docs/errors.md#bundle-eval-failed"},
	}

	registry = map[Id]*Issue{
		EntryNotFoundId:         entryNotFoundIssue,
		ModuleReadFailedId:      moduleReadFailedIssue,
		ModuleParseFailedId:     moduleParseFailedIssue,
		ModuleTransformFailedId: moduleTransformFailedIssue,
		CycleSuspectedId:        cycleSuspectedIssue,
		BundleWriteFailedId:     bundleWriteFailedIssue,
		ConfigLoadFailedId:      configLoadFailedIssue,
		BundleEvalFailedId:      bundleEvalFailedIssue,
	}
)

// Get returns the registered issue for id, or nil for unknown ids.
func Get(id Id) *Issue {
	return registry[id]
}

// Values returns every registered issue, ordered by id.
func Values() []*Issue {
	ids := maps.Keys(registry)
	slices.Sort(ids)
	issues := make([]*Issue, 0, len(ids))
	for _, id := range ids {
		issues = append(issues, registry[id])
	}
	return issues
}
