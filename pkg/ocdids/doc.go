// Package ocdids loads the official Open Civic Data division
// identifier catalogue used to validate jurisdiction references.
//
// The catalogue is one CSV file per country in the upstream identifier
// repository. A Cache downloads it through a Source (GitHub API or a
// local git clone), verifies the download, and keeps a copy on disk so
// repeated runs stay off the network while the remote is unchanged.
package ocdids
