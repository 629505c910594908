package models

type Service struct {
	ID          string `yaml:"id" json:"id"`
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
	Price       int64  `yaml:"price" json:"price"`
	DurationMin int    `yaml:"duration_min" json:"duration_min"`
	ImageURL    string `yaml:"image_url" json:"image_url"`
}

type Artist struct {
	ID       string  `yaml:"id" json:"id"`
	Name     string  `yaml:"name" json:"name"`
	Level    string  `yaml:"level" json:"level"` // junior, senior, master
	Rating   float64 `yaml:"rating" json:"rating"`
	ImageURL string  `yaml:"image_url" json:"image_url"`
}
