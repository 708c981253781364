package types

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

// EnhancementSettings is the snapshot of every adjustable parameter for one batch run.
// Offsets are centered slider values in [-100, 100]; see Factor.
type EnhancementSettings struct {
	ScalePercent     int    `json:"scale_percent" yaml:"scale_percent" env:"AUGMENT_SCALE_PERCENT" env-description:"resize percentage, 0 disables resizing" validate:"gte=0,lte=100"`
	BrightnessOffset int    `json:"brightness_offset" yaml:"brightness_offset" env:"AUGMENT_BRIGHTNESS" env-description:"brightness offset (-100..100)" validate:"gte=-100,lte=100"`
	ContrastOffset   int    `json:"contrast_offset" yaml:"contrast_offset" env:"AUGMENT_CONTRAST" env-description:"contrast offset (-100..100)" validate:"gte=-100,lte=100"`
	SharpenOffset    int    `json:"sharpen_offset" yaml:"sharpen_offset" env:"AUGMENT_SHARPEN" env-description:"sharpness offset (-100..100)" validate:"gte=-100,lte=100"`
	SaturationOffset int    `json:"saturation_offset" yaml:"saturation_offset" env:"AUGMENT_SATURATION" env-description:"saturation offset (-100..100)" validate:"gte=-100,lte=100"`
	BlurRadius       int    `json:"blur_radius" yaml:"blur_radius" env:"AUGMENT_BLUR" env-description:"gaussian blur radius (0..5), 0 disables blurring" validate:"gte=0,lte=5"`
	FlipHorizontal   bool   `json:"flip_horizontal" yaml:"flip_horizontal" env:"AUGMENT_FLIP" env-description:"mirror images left-right"`
	RotateLeft       bool   `json:"rotate_left" yaml:"rotate_left" env:"AUGMENT_ROTATE_LEFT" env-description:"rotate 90 degrees counter-clockwise"`
	RotateRight      bool   `json:"rotate_right" yaml:"rotate_right" env:"AUGMENT_ROTATE_RIGHT" env-description:"rotate 90 degrees clockwise"`
	SourceDir        string `json:"source_dir" yaml:"source_dir" env:"AUGMENT_SOURCE_DIR" env-description:"folder to read images from"`
	DestDir          string `json:"dest_dir" yaml:"dest_dir" env:"AUGMENT_DEST_DIR" env-description:"folder to write enhanced images to" validate:"required"`
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validator returns the shared struct validator.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate checks every numeric parameter against its allowed range.
func (s EnhancementSettings) Validate() error {
	if err := Validator().Struct(s); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid %s: %v (rule %s=%s)", fe.Field(), fe.Value(), fe.Tag(), fe.Param())
		}
		return err
	}
	return nil
}

// Factor converts a centered offset into a multiplicative enhancement strength.
// Factor(0) is 1.0 (no-op); the range [-100, 100] maps onto [0.0, 2.0].
func Factor(offset int) float64 {
	return float64(offset+100) / 100
}

// Labels returns the display text for each control, in panel order.
func (s EnhancementSettings) Labels() []string {
	return []string{
		fmt.Sprintf("Scale: %d%%", s.ScalePercent),
		fmt.Sprintf("Brightness: %d", s.BrightnessOffset),
		fmt.Sprintf("Contrast: %d", s.ContrastOffset),
		fmt.Sprintf("Sharpen: %d", s.SharpenOffset),
		fmt.Sprintf("Saturation: %d", s.SaturationOffset),
		fmt.Sprintf("Blur: %d", s.BlurRadius),
		fmt.Sprintf("Flip: %t", s.FlipHorizontal),
		fmt.Sprintf("Rotate left: %t", s.RotateLeft),
		fmt.Sprintf("Rotate right: %t", s.RotateRight),
	}
}

// FailurePolicy decides what a batch run does when a single file fails.
type FailurePolicy string

const (
	// FailHalt stops the run at the first failing file.
	FailHalt FailurePolicy = "halt"
	// FailContinue records the failure and moves on to the next file.
	FailContinue FailurePolicy = "continue"
)

// StepNotice describes a pipeline step that was skipped for a reportable reason
type StepNotice struct {
	Step    string `json:"step"`
	Message string `json:"message"`
}

// FileResult is the outcome of enhancing a single file
type FileResult struct {
	Name         string        `json:"name"`
	SourcePath   string        `json:"source_path"`
	DestPath     string        `json:"dest_path"`
	SourceWidth  int           `json:"source_width"`
	SourceHeight int           `json:"source_height"`
	Width        int           `json:"width"`
	Height       int           `json:"height"`
	Bytes        int64         `json:"bytes"`
	Notices      []StepNotice  `json:"notices,omitempty"`
	Duration     time.Duration `json:"duration"`
	Err          error         `json:"-"`
}

// OK reports whether the file was written successfully
func (r FileResult) OK() bool {
	return r.Err == nil
}

// Report summarizes one batch run
type Report struct {
	RunID       string       `json:"run_id"`
	SourceDir   string       `json:"source_dir"`
	DestDir     string       `json:"dest_dir"`
	Aborted     bool         `json:"aborted"`
	AbortReason string       `json:"abort_reason,omitempty"`
	Files       []FileResult `json:"files"`
}

// Processed returns the number of files that were attempted
func (r Report) Processed() int {
	return len(r.Files)
}

// Succeeded returns the number of files written successfully
func (r Report) Succeeded() int {
	n := 0
	for _, f := range r.Files {
		if f.OK() {
			n++
		}
	}
	return n
}

// Failed returns the number of files that could not be enhanced
func (r Report) Failed() int {
	return r.Processed() - r.Succeeded()
}
