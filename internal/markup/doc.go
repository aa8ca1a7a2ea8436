// Package markup turns Markdown sources into standalone HTML documents the
// browser can navigate to.
//
// The pipeline is: line normalization and ==highlight== placeholders,
// goldmark conversion (GFM, footnotes, heading IDs, chroma highlighting with
// inline styles), <mark> finalization, then rewriting of relative image and
// link paths to absolute file:// URLs so they still resolve once the
// document lives in a temp file.
//
// Any other source type is left to the browser untouched.
package markup
