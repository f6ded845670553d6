// SPDX-License-Identifier: MPL-2.0

package agent

import "testing"

func TestAgent_Name(t *testing.T) {
	tests := []struct {
		agent    Agent
		expected Name
	}{
		{Npm, NameNpm},
		{Yarn, NameYarn},
		{YarnBerry, NameYarn},
		{Pnpm, NamePnpm},
		{Pnpm6, NamePnpm},
		{Bun, NameBun},
		{Deno, NameDeno},
	}

	for _, tt := range tests {
		t.Run(string(tt.agent), func(t *testing.T) {
			if got := tt.agent.Name(); got != tt.expected {
				t.Errorf("Agent(%q).Name() = %q, want %q", tt.agent, got, tt.expected)
			}
		})
	}
}

func TestAgent_IsValid(t *testing.T) {
	for _, a := range All() {
		if !a.IsValid() {
			t.Errorf("Agent(%q).IsValid() = false, want true", a)
		}
	}

	for _, a := range []Agent{"", "cargo", "yarn@classic", "pnpm@7"} {
		if a.IsValid() {
			t.Errorf("Agent(%q).IsValid() = true, want false", a)
		}
	}
}

func TestName_Agent(t *testing.T) {
	for _, n := range Names() {
		a := n.Agent()
		if !a.IsValid() {
			t.Errorf("Name(%q).Agent() = %q, not a valid agent", n, a)
		}
		if a.Name() != n {
			t.Errorf("Name(%q).Agent().Name() = %q, want round trip", n, a.Name())
		}
	}
}

func TestName_IsValid(t *testing.T) {
	if Name("yarn@berry").IsValid() {
		t.Error("flavored identifiers must not be valid Names")
	}
	if !NameDeno.IsValid() {
		t.Error("NameDeno.IsValid() = false, want true")
	}
}

func TestAll_ReturnsCopy(t *testing.T) {
	a := All()
	a[0] = "mutated"
	if All()[0] != Npm {
		t.Error("All() must return a copy, not the backing slice")
	}
}

func TestNames_ReturnsCopy(t *testing.T) {
	n := Names()
	n[0] = "mutated"
	if Names()[0] != NameNpm {
		t.Error("Names() must return a copy, not the backing slice")
	}
}
