package models

import "strings"

// RequestKind selects the endpoint and the response shape
type RequestKind int

const (
	RequestGenerate RequestKind = iota
	RequestImage
)

func (k RequestKind) String() string {
	if k == RequestImage {
		return "image"
	}
	return "generate"
}

// ResultKind tags a Result
type ResultKind int

const (
	ResultText ResultKind = iota
	ResultImage
)

// Result is the interpreted outcome of a successful call
type Result struct {
	Kind         ResultKind
	Text         string
	ImageDataURI string
	Warnings     []string
}

// TextResult builds a text result
func TextResult(text string) *Result {
	return &Result{Kind: ResultText, Text: text}
}

// ImageResult builds an image result from a data URI
func ImageResult(dataURI string) *Result {
	return &Result{Kind: ResultImage, ImageDataURI: dataURI}
}

// IsImage reports whether the result carries an image
func (r *Result) IsImage() bool {
	return r != nil && r.Kind == ResultImage
}

// ImageBase64 returns the base64 payload of an image result
func (r *Result) ImageBase64() string {
	if !r.IsImage() {
		return ""
	}
	if i := strings.Index(r.ImageDataURI, ","); i >= 0 {
		return r.ImageDataURI[i+1:]
	}
	return r.ImageDataURI
}
