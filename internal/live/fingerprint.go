package live

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/newthinker/tradewind/internal/core"
)

// Fingerprint identifies a decision context: the strategy, the instrument,
// the classified action, and the bar it was derived from, including its
// indicator values. Two ticks that see the same last bar and classify the
// same action produce the same fingerprint and the second is suppressed.
func Fingerprint(strategy, symbol string, action core.Action, bar core.Bar) string {
	var b strings.Builder
	b.WriteString(strategy)
	b.WriteByte('|')
	b.WriteString(symbol)
	b.WriteByte('|')
	b.WriteString(string(action))
	b.WriteByte('|')
	b.WriteString(strconv.FormatInt(bar.Time.UTC().Unix(), 10))
	b.WriteByte('|')
	b.WriteString(strconv.FormatFloat(bar.Close, 'g', -1, 64))

	names := make([]string, 0, len(bar.Indicators))
	for name := range bar.Indicators {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&b, "|%s=%s", name, strconv.FormatFloat(bar.Indicators[name], 'g', -1, 64))
	}

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}
