package judge

import "fmt"

// Response statuses reported by the judge service.
const (
	StatusCompleted = "completed"
	StatusTimeout   = "timeout"
	StatusError     = "error"
)

// Canonical outcomes produced by normalizing a judge response.
const (
	OutcomeCompilationError = "compilation_error"
	OutcomeApproved         = "approved"
	OutcomeFailed           = "failed"
	OutcomePending          = "pending"
)

// Request is the payload sent to the judge /evaluate endpoint.
type Request struct {
	SubmissionID   string `json:"submissionId"`
	GuideNumber    int    `json:"guideNumber"`
	ExerciseNumber int    `json:"exerciseNumber"`
	Code           string `json:"code"`
	Language       string `json:"language"`
	Timeout        int    `json:"timeout"`
	MemoryLimit    int    `json:"memoryLimit"`
	Timestamp      string `json:"timestamp"`
}

// Compilation describes the compile phase of an evaluation.
type Compilation struct {
	Success bool   `json:"success"`
	Errors  string `json:"errors"`
}

// TestResult is a single test case outcome reported by the judge.
type TestResult struct {
	Name     string `json:"name"`
	Passed   bool   `json:"passed"`
	Expected string `json:"expected,omitempty"`
	Actual   string `json:"actual,omitempty"`
}

// Execution describes the test run phase of an evaluation.
type Execution struct {
	TotalTests  int          `json:"totalTests"`
	PassedTests int          `json:"passedTests"`
	FailedTests int          `json:"failedTests"`
	TestResults []TestResult `json:"testResults"`
}

// Response is the judge evaluation response. Compilation and Execution are
// optional: the judge omits them when the corresponding phase never ran.
type Response struct {
	Status        string       `json:"status"`
	Compilation   *Compilation `json:"compilation,omitempty"`
	Execution     *Execution   `json:"execution,omitempty"`
	Score         float64      `json:"score,omitempty"`
	ExecutionTime int64        `json:"executionTime,omitempty"`
	MemoryUsage   int64        `json:"memoryUsage,omitempty"`
}

// Outcome is the canonical classification of a judge response together with
// normalized counters. Missing numeric fields default to zero and missing
// arrays to empty, so consumers never deal with absent data.
type Outcome struct {
	Status           string       `json:"status"`
	Message          string       `json:"message"`
	Score            float64      `json:"score"`
	TotalTests       int          `json:"totalTests"`
	PassedTests      int          `json:"passedTests"`
	FailedTests      int          `json:"failedTests"`
	CompilationError string       `json:"compilationError,omitempty"`
	TestResults      []TestResult `json:"testResults"`
	ExecutionTime    int64        `json:"executionTime,omitempty"`
	MemoryUsage      int64        `json:"memoryUsage,omitempty"`
}

// Approved reports whether the outcome is a full pass. Only approved outcomes
// persist success=true to the submission log.
func (o Outcome) Approved() bool {
	return o.Status == OutcomeApproved
}

// Terminal reports whether the outcome is final, as opposed to an evaluation
// still in progress.
func (o Outcome) Terminal() bool {
	return o.Status != OutcomePending
}

// Normalize maps an arbitrary judge response into one canonical outcome.
// The branch order is load-bearing: a compilation failure wins over every
// other signal, even when execution data claims all tests passed.
func Normalize(resp Response) Outcome {
	outcome := Outcome{
		Status:        OutcomePending,
		Message:       "Evaluation in progress",
		Score:         resp.Score,
		ExecutionTime: resp.ExecutionTime,
		MemoryUsage:   resp.MemoryUsage,
		TestResults:   []TestResult{},
	}

	if resp.Execution != nil {
		outcome.TotalTests = resp.Execution.TotalTests
		outcome.PassedTests = resp.Execution.PassedTests
		outcome.FailedTests = resp.Execution.FailedTests
		if resp.Execution.TestResults != nil {
			outcome.TestResults = resp.Execution.TestResults
		}
	}
	if resp.Compilation != nil {
		outcome.CompilationError = resp.Compilation.Errors
	}

	switch {
	case resp.Compilation != nil && !resp.Compilation.Success:
		outcome.Status = OutcomeCompilationError
		outcome.Message = "Code failed to compile"
	case resp.Status == StatusCompleted && resp.Execution != nil:
		if resp.Execution.PassedTests == resp.Execution.TotalTests {
			outcome.Status = OutcomeApproved
			outcome.Message = "All tests passed successfully"
		} else {
			outcome.Status = OutcomeFailed
			outcome.Message = fmt.Sprintf("Failed %d out of %d tests", resp.Execution.FailedTests, resp.Execution.TotalTests)
		}
	case resp.Status == StatusTimeout:
		outcome.Status = OutcomeFailed
		outcome.Message = "Execution timeout"
	case resp.Status == StatusError:
		outcome.Status = OutcomeFailed
		outcome.Message = "Execution error"
	}

	return outcome
}
