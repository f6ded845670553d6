// SPDX-License-Identifier: MPL-2.0

// Package issue holds the user-facing guidance registry and the actionable
// error types the CLI renders. Each issue pairs a markdown message with
// documentation links; rendering goes through glamour so terminals get
// readable, styled guidance instead of bare error strings.
package issue

import (
	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type Id int

const (
	AgentNotDetectedId Id = iota + 1
	UnknownSpecifierId
	ConfigLoadFailedId
	UnsupportedCommandId
	WatchFailedId
)

type MarkdownMsg string

type HttpLink string

type Issue struct {
	id       Id          // ID used to look up the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink  // must never be empty, every issue type has docs
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
		extraMd += "\n\n## See also\n"
		for _, link := range i.docLinks {
			extraMd += "- [" + string(link) + "]\n"
		}
		for _, link := range i.extLinks {
			extraMd += "- [" + string(link) + "]\n"
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

// render is a seam for tests; glamour.Render needs a real terminal profile.
var render = glamour.Render

var registry = map[Id]*Issue{
	AgentNotDetectedId: {
		id: AgentNotDetectedId,
		mdMsg: "# No package manager detected\n\n" +
			"None of the configured detection strategies found a signal in this directory or any of its parents.\n\n" +
			"- Run `pmdetect detect --strategy install-metadata` to also consider `node_modules` artifacts\n" +
			"- Add a `packageManager` field to your `package.json` (e.g. `\"packageManager\": \"pnpm@9.0.0\"`)\n" +
			"- Check you are inside the project you meant to inspect",
		docLinks: []HttpLink{"https://github.com/pmdetect/pmdetect/blob/main/docs/strategies.md"},
		extLinks: []HttpLink{"https://nodejs.org/api/packages.html#packagemanager"},
	},
	UnknownSpecifierId: {
		id: UnknownSpecifierId,
		mdMsg: "# Unknown package manager\n\n" +
			"The manifest names a package manager this tool does not know. " +
			"Known agents: `npm`, `yarn`, `pnpm`, `bun`, `deno`.",
		docLinks: []HttpLink{"https://github.com/pmdetect/pmdetect/blob/main/docs/agents.md"},
	},
	ConfigLoadFailedId: {
		id: ConfigLoadFailedId,
		mdMsg: "# Configuration could not be loaded\n\n" +
			"The config file exists but could not be read or parsed. " +
			"Defaults are in effect for this invocation.\n\n" +
			"- Check the YAML syntax\n" +
			"- Run `pmdetect config show` to see the effective configuration",
		docLinks: []HttpLink{"https://github.com/pmdetect/pmdetect/blob/main/docs/configuration.md"},
	},
	UnsupportedCommandId: {
		id: UnsupportedCommandId,
		mdMsg: "# Command not supported\n\n" +
			"The detected agent has no equivalent for this command " +
			"(for example, npm has no interactive upgrade).",
		docLinks: []HttpLink{"https://github.com/pmdetect/pmdetect/blob/main/docs/commands.md"},
	},
	WatchFailedId: {
		id: WatchFailedId,
		mdMsg: "# Watch mode failed\n\n" +
			"The filesystem watcher could not be started or died. " +
			"On Linux this is usually an inotify limit; raise " +
			"`fs.inotify.max_user_watches` and retry.",
		docLinks: []HttpLink{"https://github.com/pmdetect/pmdetect/blob/main/docs/watch.md"},
	},
}

// Get returns the issue registered for id, or nil when the id is unknown.
func Get(id Id) *Issue {
	return registry[id]
}

// Known returns the registered issue ids in ascending order.
func Known() []Id {
	ids := maps.Keys(registry)
	slices.Sort(ids)
	return ids
}
