// Package analysis provides spectral and phase tools for recorded cloth series.
//
//   - [PowerSpectrum]: magnitude spectrum of a mean-removed series
//   - [DominantFrequency]: strongest flapping frequency in Hz
//   - [PhasePortrait]: value against rate of change
//   - [MeanCrossings]: crossings of the series mean
//
// # Flapping
//
// The tip displacement of a flag in steady wind oscillates; its dominant
// frequency characterizes the flutter:
//
//	hz := analysis.DominantFrequency(result.Series("tip"), dt*float64(sampleEvery))
package analysis
