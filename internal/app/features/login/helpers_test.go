package login_test

import (
	"encoding/json"

	"github.com/dalemusser/himatika/internal/testutil"
)

func jsonDecode(rec *testutil.ResponseRecorder, v any) error {
	return json.Unmarshal(rec.Body.Bytes(), v)
}
