package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/dbrec/dbrec/schema"
)

var (
	schemaPath  string
	outputPath  string
	packageName string
)

func init() {
	generateCmd.Flags().StringVarP(&schemaPath, "file", "f", "schema.yaml", "Schema YAML file to load")
	generateCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file for generated structs (default stdout)")
	generateCmd.Flags().StringVarP(&packageName, "package", "p", "", "Package name for generated structs")
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate model structs from a YAML schema",
	Long: `Generate Go model structs with dbrec tags from a YAML schema.

Examples:
  dbrec generate                          # Render schema.yaml to stdout
  dbrec generate -o models/models.go      # Write generated structs to a file
  dbrec generate -f db.yaml -p entities   # Custom schema file and package name
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		file, err := loadSchemaFile(schemaPath)
		if err != nil {
			return err
		}

		pkg := packageName
		if pkg == "" {
			pkg = file.Package
		}
		if pkg == "" {
			pkg = "models"
		}

		source, err := renderModels(pkg, file.Models)
		if err != nil {
			return err
		}

		if outputPath == "" {
			fmt.Fprint(cmd.OutOrStdout(), source)
			return nil
		}

		if dir := filepath.Dir(outputPath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("creating output directory: %w", err)
			}
		}
		if err := os.WriteFile(outputPath, []byte(source), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", outputPath, err)
		}

		color.Green("✅ Generated %d model(s) in %s", len(file.Models), outputPath)
		return nil
	},
}

type schemaFile struct {
	Package string        `yaml:"package"`
	Models  []schemaModel `yaml:"models"`
}

type schemaModel struct {
	Name   string        `yaml:"name"`
	Table  string        `yaml:"table"`
	Fields []schemaField `yaml:"fields"`
}

type schemaField struct {
	Name          string `yaml:"name"`
	Type          string `yaml:"type"`
	Column        string `yaml:"column"`
	DBType        string `yaml:"dbType"`
	Size          int    `yaml:"size"`
	PrimaryKey    bool   `yaml:"primaryKey"`
	AutoIncrement *bool  `yaml:"autoIncrement"`
	Ignore        bool   `yaml:"ignore"`
}

func loadSchemaFile(filename string) (*schemaFile, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading schema file: %w", err)
	}

	var file schemaFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("unmarshalling %s: %w", filename, err)
	}

	if len(file.Models) == 0 {
		return nil, fmt.Errorf("%s declares no models", filename)
	}
	for i, model := range file.Models {
		if model.Name == "" {
			return nil, fmt.Errorf("model #%d has no name", i+1)
		}
		if len(model.Fields) == 0 {
			return nil, fmt.Errorf("model %s has no fields", model.Name)
		}
		for j, field := range model.Fields {
			if field.Name == "" {
				return nil, fmt.Errorf("model %s: field #%d has no name", model.Name, j+1)
			}
			if field.Type == "" {
				return nil, fmt.Errorf("model %s: field %s has no type", model.Name, field.Name)
			}
		}
	}
	return &file, nil
}

type templateData struct {
	Package   string
	NeedsTime bool
	Models    []modelData
}

type modelData struct {
	Name          string
	Table         string
	TableOverride string
	Fields        []fieldData
}

type fieldData struct {
	Name string
	Type string
	Tag  string
}

var structsTemplate = template.Must(template.New("structs").Parse(`// Code generated by dbrec generate; DO NOT EDIT.

package {{.Package}}
{{- if .NeedsTime}}

import "time"
{{- end}}
{{- range .Models}}

// {{.Name}} is the model backing the {{.Table}} table.
type {{.Name}} struct {
{{- range .Fields}}
	{{.Name}} {{.Type}}{{if .Tag}} ` + "`dbrec:\"{{.Tag}}\"`" + `{{end}}
{{- end}}
}
{{- if .TableOverride}}

func ({{.Name}}) TableName() string { return "{{.TableOverride}}" }
{{- end}}
{{- end}}
`))

func renderModels(pkg string, models []schemaModel) (string, error) {
	naming := schema.NamingStrategy{}
	data := templateData{Package: pkg}

	for _, model := range models {
		md := modelData{Name: model.Name, Table: model.Table, TableOverride: model.Table}
		if md.Table == "" {
			md.Table = naming.TableName(model.Name)
		}

		for _, field := range model.Fields {
			md.Fields = append(md.Fields, fieldData{
				Name: field.Name,
				Type: field.Type,
				Tag:  buildTag(field),
			})
			if strings.Contains(field.Type, "time.Time") {
				data.NeedsTime = true
			}
		}
		data.Models = append(data.Models, md)
	}

	var buf bytes.Buffer
	if err := structsTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering structs: %w", err)
	}
	return buf.String(), nil
}

func buildTag(field schemaField) string {
	if field.Ignore {
		return "-"
	}

	var settings []string
	if field.PrimaryKey {
		settings = append(settings, "primaryKey")
	}
	if field.AutoIncrement != nil {
		if *field.AutoIncrement {
			settings = append(settings, "autoIncrement")
		} else {
			settings = append(settings, "autoIncrement:false")
		}
	}
	if field.Column != "" {
		settings = append(settings, "column:"+field.Column)
	}
	if field.DBType != "" {
		settings = append(settings, "type:"+field.DBType)
	}
	if field.Size > 0 {
		settings = append(settings, fmt.Sprintf("size:%d", field.Size))
	}
	return strings.Join(settings, ";")
}
