package recognitionService

import (
	"FaceAttendance/internal/api/recognition"
	contextPkg "FaceAttendance/pkg/context"
	"context"
	"encoding/json"

	"github.com/sirupsen/logrus"
)

func (s *recognitionService) TestConnection(ctx context.Context) (*recognition.ConnectionTestResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)

	subjects, err := s.luxand.ListSubjects(ctx)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Recognition provider connection test failed")
		return nil, err
	}

	data := make([]json.RawMessage, 0, len(subjects))
	for _, subject := range subjects {
		data = append(data, json.RawMessage(subject))
	}

	return &recognition.ConnectionTestResponse{
		Success:      true,
		Message:      "Luxand API connection successful",
		SubjectCount: len(data),
		Data:         data,
	}, nil
}
