package main

import (
	"strings"
	"testing"
)

func TestReorderArgs(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []string
	}{
		{
			name: "trailing bool flag",
			args: []string{"aether", "delete", "my-app", "-y"},
			want: []string{"aether", "delete", "-y", "my-app"},
		},
		{
			name: "subcommand with global flag",
			args: []string{"aether", "--log-level", "debug", "domain", "delete", "my-app", "1234", "-y"},
			want: []string{"aether", "--log-level", "debug", "domain", "delete", "-y", "my-app", "1234"},
		},
		{
			name: "valued flag keeps its value",
			args: []string{"aether", "logs", "api", "-l", "50", "-f"},
			want: []string{"aether", "logs", "-l", "50", "-f", "api"},
		},
		{
			name: "flags only",
			args: []string{"aether", "deploy", "-n", "api", "--force"},
			want: []string{"aether", "deploy", "-n", "api", "--force"},
		},
		{
			name: "positional only",
			args: []string{"aether", "s3", "upload", "app.tar.gz", "api", "1.0.0"},
			want: []string{"aether", "s3", "upload", "app.tar.gz", "api", "1.0.0"},
		},
		{
			name: "double dash",
			args: []string{"aether", "status", "--", "-odd-name"},
			want: []string{"aether", "status", "--", "-odd-name"},
		},
		{
			name: "no args",
			args: []string{"aether"},
			want: []string{"aether"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := reorderArgs(tt.args)
			if strings.Join(got, " ") != strings.Join(tt.want, " ") {
				t.Errorf("reorderArgs(%v) = %v, want %v", tt.args, got, tt.want)
			}
		})
	}
}

func TestAppCommands(t *testing.T) {
	app := newApp()
	want := []string{"register", "login", "logout", "whoami", "deploy", "list", "status", "logs", "delete", "domain", "s3", "dashboard"}
	for _, name := range want {
		if app.Command(name) == nil {
			t.Errorf("missing command %q", name)
		}
	}

	subcommands := map[string]bool{}
	for _, sub := range app.Command("domain").Subcommands {
		subcommands[sub.Name] = true
	}
	for _, name := range []string{"add", "list", "delete", "verify"} {
		if !subcommands[name] {
			t.Errorf("missing domain subcommand %q", name)
		}
	}
}
