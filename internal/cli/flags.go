package cli

import "pth/internal/config"

// Flags holds command-line flags
type Flags struct {
	ConfigFile string
	Verbose    bool
	TestPath   string
	NameFilter string
	ReportDir  string
	FailFast   bool
	PrepareDB  bool
	Plain      bool
	Partial    bool
}

// ToConfigFlags converts CLI flags to config flags
func (f *Flags) ToConfigFlags() config.Flags {
	return config.Flags{
		ConfigFile: f.ConfigFile,
		Verbose:    f.Verbose,
		TestPath:   f.TestPath,
		NameFilter: f.NameFilter,
		ReportDir:  f.ReportDir,
		FailFast:   f.FailFast,
		PrepareDB:  f.PrepareDB,
		Plain:      f.Plain,
		Partial:    f.Partial,
	}
}
