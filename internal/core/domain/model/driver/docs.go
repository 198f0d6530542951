// Package driver models dispatch targets and their bearer credentials.
package driver
