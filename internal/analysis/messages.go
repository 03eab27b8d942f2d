package analysis

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/your-org/trackd/pkg/dto"
)

// Wire payloads for the worker fleet. Report and face jobs travel as JSON on
// the requests channel; live start/stop use compact delimited strings on the
// cameras channel (receivers parse them without a JSON decoder).

type reportAnalysisMessage struct {
	AnalysisID string             `json:"analysisId"`
	ReportID   string             `json:"reportId"`
	Videos     []string           `json:"videos"`
	Selected   *dto.SelectedPoint `json:"selected,omitempty"`
}

type faceJobMessage struct {
	AnalysisID string `json:"analysisId"`
	ReportID   string `json:"reportId"`
	FaceID     string `json:"faceId"`
	Validate   bool   `json:"validate,omitempty"`
}

func buildReportAnalysisMessage(analysisID, reportID string, videos []string, selected *dto.SelectedPoint) ([]byte, error) {
	msg := reportAnalysisMessage{
		AnalysisID: analysisID,
		ReportID:   reportID,
		Videos:     videos,
		Selected:   selected,
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("marshal report analysis message: %w", err)
	}
	return payload, nil
}

func buildFaceJobMessage(analysisID, reportID string, image []byte, validate bool) ([]byte, error) {
	if len(image) == 0 {
		return nil, fmt.Errorf("%w: empty face image", ErrInvalidInput)
	}
	msg := faceJobMessage{
		AnalysisID: analysisID,
		ReportID:   reportID,
		FaceID:     base64.StdEncoding.EncodeToString(image),
		Validate:   validate,
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("marshal face job message: %w", err)
	}
	return payload, nil
}

func buildLiveStartMessage(analysisID string, cameraIDs []string) string {
	return analysisID + ";" + strings.Join(cameraIDs, ",")
}

func buildLiveStopMessage(analysisID string) string {
	return "Stop:" + analysisID
}
