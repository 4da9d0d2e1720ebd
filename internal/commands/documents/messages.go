package documentscmd

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-mdexpand/pkg/interfaces"
)

const (
	expandFilesMessageType = "mdexpand.documents.expand"
	cleanFilesMessageType  = "mdexpand.documents.clean"
	checkFilesMessageType  = "mdexpand.documents.check"
)

// FileSelection is the request payload shared by the document commands.
type FileSelection struct {
	// Files lists paths or doublestar patterns.
	Files []string `json:"files"`
	// Output writes results into this directory instead of in place.
	Output string `json:"output,omitempty"`
	// Name renames the output file. Requires exactly one entry in Files.
	Name  string `json:"name,omitempty"`
	Print bool   `json:"print,omitempty"`
	// MetaComment adds the generated-content warning on expand and requires
	// it on check.
	MetaComment bool                     `json:"meta_comment,omitempty"`
	Syntax      interfaces.SyntaxOptions `json:"syntax"`
}

// Request converts the selection into a service request.
func (s FileSelection) Request() interfaces.DocumentRequest {
	return interfaces.DocumentRequest{
		Files:          append([]string(nil), s.Files...),
		Output:         s.Output,
		Name:           s.Name,
		Print:          s.Print,
		AddMetaComment: s.MetaComment,
		Syntax:         s.Syntax,
	}
}

func (s FileSelection) fields() map[string]any {
	fields := map[string]any{
		"files": strings.Join(s.Files, ","),
	}
	if s.Output != "" {
		fields["output"] = s.Output
	}
	if s.Name != "" {
		fields["name"] = s.Name
	}
	if s.Print {
		fields["print"] = true
	}
	if s.MetaComment {
		fields["meta_comment"] = true
	}
	return fields
}

func (s FileSelection) validate(messageType string) error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Files, validation.Required.ErrorObject(
			validation.NewError(messageType+".files_required", "at least one file or pattern is required"),
		), validation.Each(validation.By(func(value any) error {
			if strings.TrimSpace(value.(string)) == "" {
				return validation.NewError(messageType+".file_blank", "file patterns cannot be blank")
			}
			return nil
		}))),
		validation.Field(&s.Name, validation.By(func(value any) error {
			name := strings.TrimSpace(value.(string))
			if name != "" && len(s.Files) != 1 {
				return validation.NewError(messageType+".name_single_file", "name can only be used with a single file")
			}
			if strings.ContainsAny(name, `/\`) {
				return validation.NewError(messageType+".name_separator", "name cannot contain path separators")
			}
			return nil
		})),
	)
}

// ExpandFilesCommand cleans and re-expands the selected files.
type ExpandFilesCommand struct {
	FileSelection
}

// Type implements command.Message.
func (ExpandFilesCommand) Type() string { return expandFilesMessageType }

// Validate checks the file selection before handlers execute.
func (cmd ExpandFilesCommand) Validate() error {
	return cmd.validate(expandFilesMessageType)
}

// CleanFilesCommand strips generated content from the selected files.
type CleanFilesCommand struct {
	FileSelection
}

// Type implements command.Message.
func (CleanFilesCommand) Type() string { return cleanFilesMessageType }

// Validate checks the file selection before handlers execute.
func (cmd CleanFilesCommand) Validate() error {
	return cmd.validate(cleanFilesMessageType)
}

// CheckFilesCommand validates the selected files without writing.
type CheckFilesCommand struct {
	FileSelection
}

// Type implements command.Message.
func (CheckFilesCommand) Type() string { return checkFilesMessageType }

// Validate checks the file selection before handlers execute. Output and
// Print are ignored for checks.
func (cmd CheckFilesCommand) Validate() error {
	return cmd.validate(checkFilesMessageType)
}
