package registry

import (
	"embed"
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/resellkit/research-core/internal/model"
)

//go:embed defaults/*.yaml
var defaultsFS embed.FS

type catalogFile struct {
	Tools []model.Tool `yaml:"tools"`
}

type schemaFile struct {
	Categories []model.CategorySchema `yaml:"categories"`
}

// LoadCatalog reads and indexes a tool catalog from a YAML file. An empty
// path loads the built-in catalog.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := readOrDefault(path, "defaults/tools.yaml")
	if err != nil {
		return nil, eris.Wrap(err, "registry: read tool catalog")
	}

	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, eris.Wrap(err, "registry: unmarshal tool catalog")
	}
	return NewCatalog(f.Tools)
}

// LoadSchemas reads and indexes category schemas from a YAML file. An
// empty path loads the built-in schemas.
func LoadSchemas(path string) (*SchemaSet, error) {
	data, err := readOrDefault(path, "defaults/schemas.yaml")
	if err != nil {
		return nil, eris.Wrap(err, "registry: read category schemas")
	}

	var f schemaFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, eris.Wrap(err, "registry: unmarshal category schemas")
	}
	return NewSchemaSet(f.Categories)
}

func readOrDefault(path, embedded string) ([]byte, error) {
	if path == "" {
		return defaultsFS.ReadFile(embedded)
	}
	return os.ReadFile(path)
}
