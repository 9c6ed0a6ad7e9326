package sqliteutil

import "testing"

func TestEnsurePragmas(t *testing.T) {
	testCases := []struct {
		description string
		dsn         string
		expect      string
	}{
		{description: "file", dsn: "/tmp/a.sqlite", expect: "/tmp/a.sqlite?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"},
		{description: "existing query", dsn: "/tmp/a.sqlite?cache=shared", expect: "/tmp/a.sqlite?cache=shared&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"},
		{description: "already set", dsn: "/tmp/a.sqlite?_pragma=journal_mode(DELETE)", expect: "/tmp/a.sqlite?_pragma=journal_mode(DELETE)&_pragma=busy_timeout(5000)"},
		{description: "memory", dsn: ":memory:", expect: ":memory:"},
		{description: "empty", dsn: "", expect: ""},
	}
	for _, testCase := range testCases {
		if got := EnsurePragmas(testCase.dsn, true, 5000); got != testCase.expect {
			t.Fatalf("%s: got %q want %q", testCase.description, got, testCase.expect)
		}
	}
}

func TestIsMemory(t *testing.T) {
	if !IsMemory(":memory:") || !IsMemory("file::memory:?cache=shared") || !IsMemory("file:x?mode=memory") {
		t.Fatalf("expected memory dsn")
	}
	if IsMemory("/tmp/a.sqlite") {
		t.Fatalf("unexpected memory dsn")
	}
}
