package catalog

import (
	"fmt"
	"os"

	"glowup/internal/models"

	"gopkg.in/yaml.v2"
)

// Catalog holds the pre-seeded, read-only service and artist reference data.
// It is loaded once at startup and never mutated.
type Catalog struct {
	services map[string]models.Service
	artists  map[string]models.Artist

	sortedServices []models.Service
	sortedArtists  []models.Artist
}

type catalogFile struct {
	Services []models.Service `yaml:"services"`
	Artists  []models.Artist  `yaml:"artists"`
}

// Load reads the catalog YAML file and validates it.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	return New(file.Services, file.Artists)
}

// New builds a catalog from in-memory slices. Exposed for tests and seeding.
func New(services []models.Service, artists []models.Artist) (*Catalog, error) {
	if err := validateServices(services); err != nil {
		return nil, err
	}
	if err := validateArtists(artists); err != nil {
		return nil, err
	}

	c := &Catalog{
		services:       make(map[string]models.Service, len(services)),
		artists:        make(map[string]models.Artist, len(artists)),
		sortedServices: services,
		sortedArtists:  artists,
	}
	for _, s := range services {
		c.services[s.ID] = s
	}
	for _, a := range artists {
		c.artists[a.ID] = a
	}
	return c, nil
}

func validateServices(services []models.Service) error {
	seen := make(map[string]bool)
	for _, s := range services {
		if s.ID == "" {
			return fmt.Errorf("service '%s' has empty ID", s.Name)
		}
		if seen[s.ID] {
			return fmt.Errorf("duplicate service ID found: %s", s.ID)
		}
		seen[s.ID] = true
	}
	return nil
}

func validateArtists(artists []models.Artist) error {
	seen := make(map[string]bool)
	for _, a := range artists {
		if a.ID == "" {
			return fmt.Errorf("artist '%s' has empty ID", a.Name)
		}
		if seen[a.ID] {
			return fmt.Errorf("duplicate artist ID found: %s", a.ID)
		}
		seen[a.ID] = true
	}
	return nil
}

// Services returns the catalog services in file order.
func (c *Catalog) Services() []models.Service {
	return c.sortedServices
}

// Artists returns the catalog artists in file order.
func (c *Catalog) Artists() []models.Artist {
	return c.sortedArtists
}

// HasService reports whether a service id exists.
func (c *Catalog) HasService(id string) bool {
	_, ok := c.services[id]
	return ok
}

// HasArtist reports whether an artist id exists.
func (c *Catalog) HasArtist(id string) bool {
	_, ok := c.artists[id]
	return ok
}

// ServiceByID returns a service by id.
func (c *Catalog) ServiceByID(id string) (models.Service, bool) {
	s, ok := c.services[id]
	return s, ok
}

// ArtistByID returns an artist by id.
func (c *Catalog) ArtistByID(id string) (models.Artist, bool) {
	a, ok := c.artists[id]
	return a, ok
}
