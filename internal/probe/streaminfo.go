package probe

import "regexp"

// StreamInfo holds the structural attributes scraped from the inspection
// tool's text output. Fields are kept as parsed strings: a field whose
// pattern did not match stays empty, and empty is always tolerated.
type StreamInfo struct {
	Channels      string
	SampleRate    string
	BitsPerSample string
	TotalSamples  string
	MD5           string
}

// Each field matches independently so one malformed line never poisons the
// rest of the block.
var (
	reSampleRate   = regexp.MustCompile(`sample_rate:\s*(\d+)`)
	reChannels     = regexp.MustCompile(`channels:\s*(\d+)`)
	reBitsPerSamp  = regexp.MustCompile(`bits-per-sample:\s*(\d+)`)
	reTotalSamples = regexp.MustCompile(`total samples:\s*(\d+)`)
	reMD5          = regexp.MustCompile(`MD5 signature:\s*([0-9a-fA-F]+)`)
)

// ParseStreamInfo scrapes the typed fields out of free-form tool output.
func ParseStreamInfo(text string) StreamInfo {
	pick := func(re *regexp.Regexp) string {
		if m := re.FindStringSubmatch(text); m != nil {
			return m[1]
		}
		return ""
	}
	return StreamInfo{
		Channels:      pick(reChannels),
		SampleRate:    pick(reSampleRate),
		BitsPerSample: pick(reBitsPerSamp),
		TotalSamples:  pick(reTotalSamples),
		MD5:           pick(reMD5),
	}
}
