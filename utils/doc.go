// Package utils provides display formatting shared by the navigation engine.
//
// It contains:
//   - Distance formatting (meters below one kilometer, kilometers above)
//   - Duration and ETA formatting
package utils
