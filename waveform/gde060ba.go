package waveform

// span is a run of n identical codes.
type span struct {
	c DriveCode
	n int
}

func seq(spans ...span) []DriveCode {
	var out []DriveCode
	for _, s := range spans {
		for i := 0; i < s.n; i++ {
			out = append(out, s.c)
		}
	}
	return out
}

// Pulses needed to move a pixel between white and each level: the panel
// settles at a distinct grey every 5 frames of drive.
const (
	stage = 15
	step  = 5
)

// GDE060BA is the default waveform for the GDE060BA panel at room
// temperature.
//
// The erase phase first lifts each level by the amount it was darkened, then
// flashes the whole panel to black and back to white so that every pixel
// starts the draw phase saturated white. The draw phase darkens each level by
// its distance from white; its last frame is a trailing hold.
var GDE060BA = Waveform{
	Erase: Seed{
		seq(span{ToWhite, 3 * step}, span{ToBlack, stage}, span{ToWhite, stage}),
		seq(span{ToWhite, 2 * step}, span{Hold, step}, span{ToBlack, stage}, span{ToWhite, stage}),
		seq(span{ToWhite, step}, span{Hold, 2 * step}, span{ToBlack, stage}, span{ToWhite, stage}),
		seq(span{Hold, 3 * step}, span{ToBlack, stage}, span{ToWhite, stage}),
	},
	Draw: Seed{
		seq(span{ToBlack, 3 * step}, span{Hold, 1}),
		seq(span{ToBlack, 2 * step}, span{Hold, step + 1}),
		seq(span{ToBlack, step}, span{Hold, 2*step + 1}),
		seq(span{Hold, 3*step + 1}),
	},
}
