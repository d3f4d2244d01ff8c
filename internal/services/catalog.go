package services

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pathlight/pathlight-backend/internal/logger"
	"github.com/pathlight/pathlight-backend/internal/utils"
)

// CatalogModule is one content module as declared in the catalog file.
type CatalogModule struct {
	ID       string `yaml:"id" json:"id"`
	Title    string `yaml:"title" json:"title"`
	Duration string `yaml:"duration" json:"duration"`
	VideoURL string `yaml:"video_url" json:"video_url,omitempty"`
}

// CatalogCareer declares a career interest and the modules its learning
// path draws from.
type CatalogCareer struct {
	Name      string   `yaml:"name" json:"name"`
	ModuleIDs []string `yaml:"modules" json:"modules"`
}

type catalogFile struct {
	Careers []CatalogCareer `yaml:"careers"`
	Modules []CatalogModule `yaml:"modules"`
}

// CatalogService answers "is this a known career?" and "which modules
// exist?". The catalog is read once at startup; content changes ship as a
// new file plus restart.
type CatalogService interface {
	Careers() []CatalogCareer
	Modules() []CatalogModule
	HasCareer(name string) bool
	HasModule(id string) bool
	ModuleByID(id string) (CatalogModule, bool)
}

type catalogService struct {
	log      *logger.Logger
	careers  []CatalogCareer
	modules  []CatalogModule
	byCareer map[string]CatalogCareer
	byModule map[string]CatalogModule
}

func NewCatalogService(log *logger.Logger) (CatalogService, error) {
	serviceLog := log.With("service", "CatalogService")

	path := utils.GetEnv("CATALOG_PATH", "./configs/catalog.yaml", log)
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read catalog file: %w", err)
	}
	return newCatalogFromYAML(serviceLog, raw)
}

func newCatalogFromYAML(log *logger.Logger, raw []byte) (CatalogService, error) {
	var parsed catalogFile
	if err := yaml.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("could not parse catalog yaml: %w", err)
	}
	if len(parsed.Modules) == 0 {
		return nil, fmt.Errorf("catalog declares no modules")
	}

	byCareer := make(map[string]CatalogCareer, len(parsed.Careers))
	for _, c := range parsed.Careers {
		byCareer[strings.ToLower(c.Name)] = c
	}
	byModule := make(map[string]CatalogModule, len(parsed.Modules))
	for _, m := range parsed.Modules {
		byModule[m.ID] = m
	}

	log.Info("Catalog loaded", "careers", len(parsed.Careers), "modules", len(parsed.Modules))
	return &catalogService{
		log:      log,
		careers:  parsed.Careers,
		modules:  parsed.Modules,
		byCareer: byCareer,
		byModule: byModule,
	}, nil
}

func (cs *catalogService) Careers() []CatalogCareer { return cs.careers }
func (cs *catalogService) Modules() []CatalogModule { return cs.modules }

func (cs *catalogService) HasCareer(name string) bool {
	_, ok := cs.byCareer[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

func (cs *catalogService) HasModule(id string) bool {
	_, ok := cs.byModule[id]
	return ok
}

func (cs *catalogService) ModuleByID(id string) (CatalogModule, bool) {
	m, ok := cs.byModule[id]
	return m, ok
}
