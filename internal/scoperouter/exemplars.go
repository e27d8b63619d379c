package scoperouter

import (
	_ "embed"

	"gopkg.in/yaml.v3"
)

//go:embed exemplars.yaml
var exemplarsYAML []byte

// exemplarSeeds mirrors exemplars.yaml's shape.
type exemplarSeeds struct {
	Project []string `yaml:"project"`
	User    []string `yaml:"user"`
}

// projectExemplars and userExemplars seed the scope classifier's two
// reference groups, decoded once at package init from the embedded
// exemplars.yaml asset. The seed sentences are part of the external
// contract: routing is only reproducible if they stay bit-exact, so
// exemplars.yaml must not change without a contract bump.
var projectExemplars, userExemplars = mustLoadExemplars()

func mustLoadExemplars() ([]string, []string) {
	var seeds exemplarSeeds
	if err := yaml.Unmarshal(exemplarsYAML, &seeds); err != nil {
		panic("scoperouter: failed to parse embedded exemplars.yaml: " + err.Error())
	}
	return seeds.Project, seeds.User
}
