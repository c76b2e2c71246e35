package extmon

// Config for a monitoring run
type Config struct {
	URL            string // start url to navigate after attach
	ExtensionPath  string // unpacked extension dir loaded into the profile
	DataPath       string // reports/screenshots/profile live under here
	ChromePath     string // explicit binary path, discovered when empty
	Headless       bool
	ActivityPollMS int // activity log poll interval, default 2000
	BodyGraceMS    int // grace period for in-flight bodies at stop, default 2000
}

// ActivityPoll interval with default applied
func (c *Config) ActivityPoll() int {
	if c.ActivityPollMS <= 0 {
		return 2000
	}
	return c.ActivityPollMS
}

// BodyGrace period with default applied
func (c *Config) BodyGrace() int {
	if c.BodyGraceMS <= 0 {
		return 2000
	}
	return c.BodyGraceMS
}
