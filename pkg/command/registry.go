// SPDX-License-Identifier: MPL-2.0

package command

import (
	"maps"

	"pmdetect/pkg/agent"
)

// runWithArgs builds the npm-style script invocation, where script arguments
// need a "--" separator after the script name. Yarn and pnpm 7+ pass
// arguments through without it.
func runWithArgs(bin string) func(args []string) []string {
	return func(args []string) []string {
		if len(args) > 1 {
			return append([]string{bin, "run", args[0], "--"}, args[1:]...)
		}
		return append([]string{bin, "run"}, args...)
	}
}

// derive copies a parent table and applies overrides. Flavored agents
// (yarn@berry, pnpm@6) share most of their family's surface.
func derive(parent, overrides map[Command]template) map[Command]template {
	out := maps.Clone(parent)
	maps.Copy(out, overrides)
	return out
}

var npmTable = map[Command]template{
	Agent:              {tokens: []string{"npm", placeholder}},
	Run:                {build: runWithArgs("npm")},
	Install:            {tokens: []string{"npm", "i"}},
	Frozen:             {tokens: []string{"npm", "ci"}},
	Global:             {tokens: []string{"npm", "i", "-g", placeholder}},
	Add:                {tokens: []string{"npm", "i", placeholder}},
	Upgrade:            {tokens: []string{"npm", "update", placeholder}},
	UpgradeInteractive: {unsupported: true},
	Execute:            {tokens: []string{"npx", placeholder}},
	ExecuteLocal:       {tokens: []string{"npx", placeholder}},
	Uninstall:          {tokens: []string{"npm", "uninstall", placeholder}},
	GlobalUninstall:    {tokens: []string{"npm", "uninstall", "-g", placeholder}},
}

var yarnTable = map[Command]template{
	Agent:              {tokens: []string{"yarn", placeholder}},
	Run:                {tokens: []string{"yarn", "run", placeholder}},
	Install:            {tokens: []string{"yarn", "install"}},
	Frozen:             {tokens: []string{"yarn", "install", "--frozen-lockfile"}},
	Global:             {tokens: []string{"yarn", "global", "add", placeholder}},
	Add:                {tokens: []string{"yarn", "add", placeholder}},
	Upgrade:            {tokens: []string{"yarn", "upgrade", placeholder}},
	UpgradeInteractive: {tokens: []string{"yarn", "upgrade-interactive", placeholder}},
	Execute:            {tokens: []string{"npx", placeholder}},
	ExecuteLocal:       {tokens: []string{"yarn", "exec", placeholder}},
	Uninstall:          {tokens: []string{"yarn", "remove", placeholder}},
	GlobalUninstall:    {tokens: []string{"yarn", "global", "remove", placeholder}},
}

// yarnBerryTable diverges where berry renamed or removed classic commands:
// immutable installs, "up" for upgrades, "dlx" for remote execution, and no
// global scope (berry delegates global installs to npm).
var yarnBerryTable = derive(yarnTable, map[Command]template{
	Frozen:             {tokens: []string{"yarn", "install", "--immutable"}},
	Global:             {tokens: []string{"npm", "i", "-g", placeholder}},
	Upgrade:            {tokens: []string{"yarn", "up", placeholder}},
	UpgradeInteractive: {tokens: []string{"yarn", "up", "-i", placeholder}},
	Execute:            {tokens: []string{"yarn", "dlx", placeholder}},
	GlobalUninstall:    {tokens: []string{"npm", "uninstall", "-g", placeholder}},
})

var pnpmTable = map[Command]template{
	Agent:              {tokens: []string{"pnpm", placeholder}},
	Run:                {tokens: []string{"pnpm", "run", placeholder}},
	Install:            {tokens: []string{"pnpm", "i"}},
	Frozen:             {tokens: []string{"pnpm", "i", "--frozen-lockfile"}},
	Global:             {tokens: []string{"pnpm", "add", "-g", placeholder}},
	Add:                {tokens: []string{"pnpm", "add", placeholder}},
	Upgrade:            {tokens: []string{"pnpm", "update", placeholder}},
	UpgradeInteractive: {tokens: []string{"pnpm", "update", "-i", placeholder}},
	Execute:            {tokens: []string{"pnpm", "dlx", placeholder}},
	ExecuteLocal:       {tokens: []string{"pnpm", "exec", placeholder}},
	Uninstall:          {tokens: []string{"pnpm", "remove", placeholder}},
	GlobalUninstall:    {tokens: []string{"pnpm", "remove", "--global", placeholder}},
}

// pnpm6Table differs only in script-argument passing: pnpm 6 still required
// the npm-style "--" separator.
var pnpm6Table = derive(pnpmTable, map[Command]template{
	Run: {build: runWithArgs("pnpm")},
})

var bunTable = map[Command]template{
	Agent:              {tokens: []string{"bun", placeholder}},
	Run:                {tokens: []string{"bun", "run", placeholder}},
	Install:            {tokens: []string{"bun", "install"}},
	Frozen:             {tokens: []string{"bun", "install", "--frozen-lockfile"}},
	Global:             {tokens: []string{"bun", "add", "-g", placeholder}},
	Add:                {tokens: []string{"bun", "add", placeholder}},
	Upgrade:            {tokens: []string{"bun", "update", placeholder}},
	UpgradeInteractive: {tokens: []string{"bun", "update", placeholder}},
	Execute:            {tokens: []string{"bun", "x", placeholder}},
	ExecuteLocal:       {tokens: []string{"bun", "x", placeholder}},
	Uninstall:          {tokens: []string{"bun", "remove", placeholder}},
	GlobalUninstall:    {tokens: []string{"bun", "remove", "-g", placeholder}},
}

var denoTable = map[Command]template{
	Agent:              {tokens: []string{"deno", placeholder}},
	Run:                {tokens: []string{"deno", "task", placeholder}},
	Install:            {tokens: []string{"deno", "install"}},
	Frozen:             {tokens: []string{"deno", "install", "--frozen"}},
	Global:             {tokens: []string{"deno", "install", "-g", placeholder}},
	Add:                {tokens: []string{"deno", "add", placeholder}},
	Upgrade:            {tokens: []string{"deno", "outdated", "--update", placeholder}},
	UpgradeInteractive: {tokens: []string{"deno", "outdated", "--update", "--interactive", placeholder}},
	Execute:            {tokens: []string{"deno", "run", placeholder}},
	ExecuteLocal:       {tokens: []string{"deno", "task", placeholder}},
	Uninstall:          {tokens: []string{"deno", "remove", placeholder}},
	GlobalUninstall:    {tokens: []string{"deno", "uninstall", "-g", placeholder}},
}

// registry maps every known agent to its command table. Consumed read-only.
var registry = map[agent.Agent]map[Command]template{
	agent.Npm:       npmTable,
	agent.Yarn:      yarnTable,
	agent.YarnBerry: yarnBerryTable,
	agent.Pnpm:      pnpmTable,
	agent.Pnpm6:     pnpm6Table,
	agent.Bun:       bunTable,
	agent.Deno:      denoTable,
}
