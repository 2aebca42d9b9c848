// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"
	"testing"
)

func TestId_Constants(t *testing.T) {
	// Verify all IDs are unique and sequential
	ids := []Id{
		ManifestNotFoundId,
		ManifestParseErrorId,
		DescriptorNotFoundId,
		DescriptorParseErrorId,
		EngineNotFoundId,
		BuildFailedId,
		ValidationFailedId,
		ConfigLoadFailedId,
		OutputCollisionId,
	}

	seen := make(map[Id]bool)
	for _, id := range ids {
		if seen[id] {
			t.Errorf("duplicate ID: %d", id)
		}
		seen[id] = true
	}

	// Verify IDs start at 1 (iota + 1)
	if ManifestNotFoundId != 1 {
		t.Errorf("ManifestNotFoundId = %d, want 1", ManifestNotFoundId)
	}
}

func TestGet_AllIdsResolve(t *testing.T) {
	for id := ManifestNotFoundId; id <= OutputCollisionId; id++ {
		issue := Get(id)
		if issue == nil {
			t.Errorf("Get(%d) returned nil", id)
			continue
		}
		if issue.Id() != id {
			t.Errorf("issue.Id() = %d, want %d", issue.Id(), id)
		}
		if issue.MarkdownMsg() == "" {
			t.Errorf("issue %d has empty message", id)
		}
	}
}

func TestIssue_MarkdownMsg(t *testing.T) {
	issue := Get(ManifestNotFoundId)
	if issue == nil {
		t.Fatal("Get(ManifestNotFoundId) returned nil")
	}

	msg := issue.MarkdownMsg()
	if !strings.Contains(string(msg), "FilterPlugin.ini") {
		t.Error("MarkdownMsg() should name the manifest location")
	}
}

func TestIssue_DocLinks(t *testing.T) {
	issue := Get(EngineNotFoundId)
	if issue == nil {
		t.Fatal("Get(EngineNotFoundId) returned nil")
	}

	// DocLinks returns a clone of the links
	links := issue.DocLinks()
	if len(links) > 0 {
		original := links[0]
		links[0] = "modified"
		newLinks := issue.DocLinks()
		if len(newLinks) > 0 && newLinks[0] != original {
			t.Error("DocLinks() should return a clone")
		}
	}
}

func TestValues(t *testing.T) {
	values := Values()
	if len(values) != len(issues) {
		t.Errorf("Values() returned %d issues, want %d", len(values), len(issues))
	}
}
