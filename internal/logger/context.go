package logger

// Generator returns a logger for orchestration of import, sync and generation.
func Generator() Logger {
	return WithField("component", "generator")
}

// Store returns a logger for metadata persistence.
func Store() Logger {
	return WithField("component", "store")
}

// Source returns a logger for live schema introspection.
func Source() Logger {
	return WithField("component", "source")
}

// Render returns a logger for template rendering.
func Render() Logger {
	return WithField("component", "render")
}

// API returns a logger for the HTTP surface.
func API() Logger {
	return WithField("component", "api")
}

// CLI returns a logger for command line operations.
func CLI() Logger {
	return WithField("component", "cli")
}
