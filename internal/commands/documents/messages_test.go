package documentscmd

import "testing"

func TestFileSelectionValidation(t *testing.T) {
	cases := []struct {
		name    string
		sel     FileSelection
		wantErr bool
	}{
		{name: "single file", sel: FileSelection{Files: []string{"README.md"}}},
		{name: "patterns", sel: FileSelection{Files: []string{"docs/**/*.md", "README.md"}}},
		{name: "name with one file", sel: FileSelection{Files: []string{"README.tpl.md"}, Name: "README.md"}},
		{name: "no files", sel: FileSelection{}, wantErr: true},
		{name: "blank pattern", sel: FileSelection{Files: []string{" "}}, wantErr: true},
		{name: "name with many files", sel: FileSelection{Files: []string{"a.md", "b.md"}, Name: "c.md"}, wantErr: true},
		{name: "name with separator", sel: FileSelection{Files: []string{"a.md"}, Name: "out/c.md"}, wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ExpandFilesCommand{tc.sel}.Validate()
			if tc.wantErr && err == nil {
				t.Fatal("expected validation error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestMessageTypes(t *testing.T) {
	if (ExpandFilesCommand{}).Type() != "mdexpand.documents.expand" {
		t.Fatal("unexpected expand type")
	}
	if (CleanFilesCommand{}).Type() != "mdexpand.documents.clean" {
		t.Fatal("unexpected clean type")
	}
	if (CheckFilesCommand{}).Type() != "mdexpand.documents.check" {
		t.Fatal("unexpected check type")
	}
}
