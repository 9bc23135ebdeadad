package config

// Lanefile represents the structure of the lane.yaml pipeline definition.
type Lanefile struct {
	Version   string            `yaml:"version"`
	Runner    string            `yaml:"runner"`
	Lockfile  string            `yaml:"lockfile"`
	Toolchain ToolchainDTO      `yaml:"toolchain"`
	Env       map[string]string `yaml:"env"`
	Cache     []NamespaceDTO    `yaml:"cache"`
	Stages    []StageDTO        `yaml:"stages"`
	Timeouts  TimeoutsDTO       `yaml:"timeouts"`
}

// ToolchainDTO names the toolchain channel and extra targets.
type ToolchainDTO struct {
	Channel string   `yaml:"channel"`
	Targets []string `yaml:"targets"`
}

// NamespaceDTO declares one cache namespace.
type NamespaceDTO struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`
}

// StageDTO represents a stage definition in the configuration.
type StageDTO struct {
	Name       string            `yaml:"name"`
	Cmd        []string          `yaml:"cmd"`
	WorkingDir string            `yaml:"workingDir"`
	Env        map[string]string `yaml:"environment"`
	AlwaysRun  bool              `yaml:"alwaysRun"`
}

// TimeoutsDTO carries the per-stage and cleanup timeouts as duration
// strings, e.g. "30m".
type TimeoutsDTO struct {
	Stage   string `yaml:"stage"`
	Cleanup string `yaml:"cleanup"`
}
