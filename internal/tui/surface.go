package tui

import (
	"github.com/diogo/geminiwin95/internal/api"
	"github.com/diogo/geminiwin95/internal/models"
)

// transcriptRecorder collects what one send produced off the UI goroutine.
// The collected messages are handed back to the model in a dispatchMsg.
type transcriptRecorder struct {
	imageDir string
	prompt   string
	messages []models.Message
}

func newTranscriptRecorder(imageDir, prompt string) *transcriptRecorder {
	return &transcriptRecorder{imageDir: imageDir, prompt: prompt}
}

func (r *transcriptRecorder) AppendText(text string) {
	r.messages = append(r.messages, models.Message{Role: models.RoleAssistant, Content: text})
}

// AppendImage saves the image to the download directory and records its path
func (r *transcriptRecorder) AppendImage(dataURI string) {
	path, err := api.SaveImage(models.ImageResult(dataURI), api.ImageSaveOptions{
		Directory: r.imageDir,
		Prompt:    r.prompt,
	})
	if err != nil {
		r.AppendError("could not save image: " + err.Error())
		return
	}
	r.messages = append(r.messages, models.Message{
		Role:      models.RoleAssistant,
		Content:   "Image generated.",
		ImagePath: path,
	})
}

func (r *transcriptRecorder) AppendError(message string) {
	r.messages = append(r.messages, models.Message{Role: models.RoleSystem, Content: "Error: " + message})
}

func (r *transcriptRecorder) AppendNotice(message string) {
	r.messages = append(r.messages, models.Message{Role: models.RoleNotice, Content: message})
}
