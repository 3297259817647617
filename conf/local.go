package conf

type Local struct {
	Locations []Location
}

type Location struct {
	SkipLimits bool
	PathPrefix string `valid:"required"`
	TargetUrl  string `valid:"required"`
}
