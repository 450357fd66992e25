package main

import "testing"

func TestCommandTree(t *testing.T) {
	want := []string{"generate", "orders", "config", "history", "export:xlsx", "catalog:sync", "inspect", "inbox:fetch", "serve"}
	for _, name := range want {
		cmd, _, err := rootCmd.Find([]string{name})
		if err != nil || cmd == rootCmd {
			t.Fatalf("command %q not registered: %v", name, err)
		}
	}

	sub, _, err := rootCmd.Find([]string{"config", "set-active-sender"})
	if err != nil || sub.Name() != "set-active-sender" {
		t.Fatalf("config set-active-sender missing: %v", err)
	}
}
