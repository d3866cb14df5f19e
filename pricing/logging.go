package pricing

import (
	"github.com/streamingfast/logging"
	"go.uber.org/zap"
)

var zlog *zap.Logger

func init() {
	zlog, _ = logging.PackageLogger("pricing", "github.com/streamingfast/substreams-pcs-pricing/pricing")
}
