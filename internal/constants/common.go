package constants

// Deployment stages
const (
	ProdEnvironment  = "prod"
	DevEnvironment   = "dev"
	LocalEnvironment = "local"
	TestEnvironment  = "test"
)

// Log levels referenced outside the logger package
const (
	ErrorLevel = "error"
)

// DaysPerYear is the day-count convention for interest accrual (actual/365 fixed).
const DaysPerYear = 365
