// Package orchestration runs one or more Fibonacci calculators concurrently,
// forwards their progress to a reporter and compares the results.
// Presentation is reached only through the ProgressReporter,
// ResultPresenter and ErrorHandler interfaces.
package orchestration
