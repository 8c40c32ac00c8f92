// Package cast loads the roster of pre-staged scripted actors.
package cast

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Cast struct {
	Actors []Member `yaml:"actors"`
}

type Member struct {
	Name         string     `yaml:"name"`
	Script       string     `yaml:"script"`
	Pos          [3]float64 `yaml:"pos"`
	Controllable bool       `yaml:"controllable"`
}

func Load(path string) (Cast, error) {
	var c Cast
	raw, err := os.ReadFile(path)
	if err != nil {
		return c, err
	}
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return c, fmt.Errorf("cast config: %w", err)
	}
	for i, m := range c.Actors {
		if m.Name == "" {
			return c, fmt.Errorf("cast actor %d: missing name", i)
		}
	}
	return c, nil
}
