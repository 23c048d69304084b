package reporter

// Reporter receives the stages of an analysis run.
type Reporter interface {
	Hardware(summary HardwareSummary)
	Input(summary InputSummary)
	Config(summary ConfigSummary)
	AnalysisStarted(totalCTBs int)
	AnalysisProgress(done, total int)
	AnalysisComplete(outcome Outcome)
	Warning(message string)
	Error(err error)
}

// NullReporter is a no-op reporter that discards all updates.
type NullReporter struct{}

func (NullReporter) Hardware(HardwareSummary)  {}
func (NullReporter) Input(InputSummary)        {}
func (NullReporter) Config(ConfigSummary)      {}
func (NullReporter) AnalysisStarted(int)       {}
func (NullReporter) AnalysisProgress(int, int) {}
func (NullReporter) AnalysisComplete(Outcome)  {}
func (NullReporter) Warning(string)            {}
func (NullReporter) Error(error)               {}
