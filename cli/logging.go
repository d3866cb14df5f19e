package cli

import (
	"github.com/streamingfast/logging"
	"go.uber.org/zap"
)

var zlog *zap.Logger

func init() {
	zlog, _ = logging.ApplicationLogger("pcs-pricing", "github.com/streamingfast/substreams-pcs-pricing/cli",
		logging.WithSwitcherServerAutoStart(),
	)
}
