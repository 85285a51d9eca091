package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/labctl/labctl/internal/form"
)

// draftFile is a YAML lab definition. Omitted keys keep the dialog's current
// value, so the same file format serves create and partial update.
type draftFile struct {
	Name          *string `yaml:"name"`
	Description   *string `yaml:"description"`
	BaseImage     *string `yaml:"baseImage"`
	EstimatedTime *int    `yaml:"estimatedTime"`
}

func readDraftFile(path string, stdin io.Reader) (draftFile, error) {
	var df draftFile
	r := stdin
	if path != "-" {
		file, err := os.Open(path)
		if err != nil {
			return df, fmt.Errorf("open draft: %w", err)
		}
		defer file.Close()
		r = file
	}

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&df); err != nil {
		if errors.Is(err, io.EOF) {
			return df, fmt.Errorf("parse draft %s: file is empty", path)
		}
		return df, fmt.Errorf("parse draft %s: %w", path, err)
	}
	return df, nil
}

func (df draftFile) apply(c *form.Controller) {
	if df.Name != nil {
		c.SetField(form.FieldName, *df.Name)
	}
	if df.Description != nil {
		c.SetField(form.FieldDescription, *df.Description)
	}
	if df.BaseImage != nil {
		c.SetField(form.FieldBaseImage, *df.BaseImage)
	}
	if df.EstimatedTime != nil {
		c.SetField(form.FieldEstimatedTime, strconv.Itoa(*df.EstimatedTime))
	}
}

// draftFlags are the per-field flags of create and update.
type draftFlags struct {
	file          string
	name          string
	description   string
	baseImage     string
	estimatedTime int
}

func (f *draftFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVarP(&f.file, "file", "f", "", "YAML lab definition (- reads stdin)")
	flags.StringVar(&f.name, "name", "", "lab name")
	flags.StringVar(&f.description, "description", "", "lab description")
	flags.StringVar(&f.baseImage, "base-image", "", "container base image")
	flags.IntVar(&f.estimatedTime, "estimated-time", form.DefaultEstimatedTime,
		fmt.Sprintf("estimated time in minutes (%d-%d)", form.MinEstimatedTime, form.MaxEstimatedTime))
}

// fill applies the file first, then any flag the user set explicitly.
func (f *draftFlags) fill(cmd *cobra.Command, c *form.Controller) error {
	if f.file != "" {
		df, err := readDraftFile(f.file, cmd.InOrStdin())
		if err != nil {
			return err
		}
		df.apply(c)
	}
	flags := cmd.Flags()
	if flags.Changed("name") {
		c.SetField(form.FieldName, f.name)
	}
	if flags.Changed("description") {
		c.SetField(form.FieldDescription, f.description)
	}
	if flags.Changed("base-image") {
		c.SetField(form.FieldBaseImage, f.baseImage)
	}
	if flags.Changed("estimated-time") {
		c.SetField(form.FieldEstimatedTime, strconv.Itoa(f.estimatedTime))
	}
	return nil
}
