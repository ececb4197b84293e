package config

// Default configuration values.
const (
	DefaultClients     = 100
	DefaultTeamMembers = 40
	DefaultProjects    = 300
	DefaultMultiplier  = 1
	DefaultOutputDir   = "out"
	DefaultStateFile   = "synthline.db"
)

// ApplyDefaults fills zero-valued fields with defaults.
func ApplyDefaults(c *Config) {
	if c == nil {
		return
	}
	if c.Rows.Clients == 0 {
		c.Rows.Clients = DefaultClients
	}
	if c.Rows.TeamMembers == 0 {
		c.Rows.TeamMembers = DefaultTeamMembers
	}
	if c.Rows.Projects == 0 {
		c.Rows.Projects = DefaultProjects
	}
	if c.Multiplier == 0 {
		c.Multiplier = DefaultMultiplier
	}
	if c.OutputDir == "" {
		c.OutputDir = DefaultOutputDir
	}
	if c.StatePath == "" {
		c.StatePath = DefaultStateFile
	}
}

// ApplySinkDefaults applies type-specific defaults to a sink config.
func ApplySinkDefaults(s *SinkConfig) {
	if s == nil {
		return
	}
	if s.Type == "postgres" && s.Port == 0 {
		s.Port = 5432
	}
}
