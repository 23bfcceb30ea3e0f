// Package site provides the site-level collaborators of the codecs:
// canonical entity URLs and the account imports run as.
package site
