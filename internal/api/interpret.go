package api

import (
	"github.com/tidwall/gjson"

	apierrors "github.com/diogo/geminiwin95/internal/errors"
	"github.com/diogo/geminiwin95/internal/models"
)

// gjson paths into the two response shapes
const (
	PathCandidates      = "candidates"
	PathCandidateText   = "candidates.0.content.parts.0.text"
	PathPredictions     = "predictions"
	PathPredictionBytes = "predictions.0.bytesBase64Encoded"
)

// Interpret classifies a raw HTTP response.
//
// A status of 400 or more always yields an *errors.APIError carrying the
// body verbatim. Otherwise the body is read according to kind; a body that
// does not match the expected shape degrades to the fixed fallback text.
func Interpret(kind models.RequestKind, status int, body []byte) (*models.Result, error) {
	if status >= 400 {
		return nil, apierrors.NewAPIError(status, "", string(body))
	}

	if kind == models.RequestImage {
		data := gjson.GetBytes(body, PathPredictionBytes)
		if data.Type == gjson.String && data.String() != "" {
			return models.ImageResult(models.ImageDataURIPrefix + data.String()), nil
		}
		return models.TextResult(models.FallbackNoImage), nil
	}

	// an empty string is still a reply; only a missing one falls back
	text := gjson.GetBytes(body, PathCandidateText)
	if text.Type == gjson.String {
		return models.TextResult(text.String()), nil
	}
	return models.TextResult(models.FallbackNoResponse), nil
}

// checkBody reports why a successful body does not match the expected
// shape. It is only used for diagnostics.
func checkBody(kind models.RequestKind, body []byte) error {
	if !gjson.ValidBytes(body) {
		return apierrors.NewParseError("response is not valid JSON", "")
	}

	parsed := gjson.ParseBytes(body)
	if kind == models.RequestImage {
		if !parsed.Get(PathPredictions).IsArray() {
			return apierrors.NewParseError("no predictions found", PathPredictions)
		}
		if !parsed.Get(PathPredictionBytes).Exists() {
			return apierrors.NewParseError("no image bytes found", PathPredictionBytes)
		}
		return nil
	}

	if !parsed.Get(PathCandidates).IsArray() {
		return apierrors.NewParseError("no candidates found", PathCandidates)
	}
	if !parsed.Get(PathCandidateText).Exists() {
		return apierrors.NewParseError("no text found", PathCandidateText)
	}
	return nil
}
