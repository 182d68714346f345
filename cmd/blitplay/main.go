// Command blitplay plays a band-limited impulse train through the speaker and lets you turn its
// controls from the terminal.
package main

import (
	"fmt"
	"math"
	"os"
	"time"
	"unicode"

	"github.com/gdamore/tcell"

	"github.com/porres/blit"
	"github.com/porres/blit/effects"
	"github.com/porres/blit/speaker"
)

const semitone = 1.0594630943592953 // 2^(1/12)

func drawTextLine(screen tcell.Screen, x, y int, s string, style tcell.Style) {
	for _, r := range s {
		screen.SetContent(x, y, r, nil, style)
		x++
	}
}

// knob is an infinite control whose value may be changed while the speaker is locked.
type knob struct {
	value float64
}

func (k *knob) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		samples[i] = [2]float64{k.value, k.value}
	}
	return len(samples), true
}

func (k *knob) Err() error {
	return nil
}

// pause streams silence instead of its Streamer while paused.
type pause struct {
	Streamer blit.Streamer
	Paused   bool
}

func (p *pause) Stream(samples [][2]float64) (n int, ok bool) {
	if p.Paused {
		for i := range samples {
			samples[i] = [2]float64{}
		}
		return len(samples), true
	}
	return p.Streamer.Stream(samples)
}

func (p *pause) Err() error {
	return p.Streamer.Err()
}

type voicePanel struct {
	sampleRate blit.SampleRate
	generator  *blit.Generator
	frequency  *knob
	harmonics  *knob
	polarity   *knob
	ctrl       *pause
	volume     *effects.Volume
}

func newVoicePanel(sampleRate blit.SampleRate) *voicePanel {
	g := blit.New()
	g.Configure(sampleRate)
	vp := &voicePanel{
		sampleRate: sampleRate,
		generator:  g,
		frequency:  &knob{220},
		harmonics:  &knob{8},
		polarity:   &knob{1},
	}
	osc := blit.NewOscillator(g, vp.frequency, vp.harmonics, vp.polarity)
	vp.ctrl = &pause{Streamer: osc}
	vp.volume = &effects.Volume{Streamer: vp.ctrl, Base: 2, Volume: -2}
	return vp
}

func (vp *voicePanel) play() {
	speaker.Play(vp.volume)
}

func (vp *voicePanel) draw(screen tcell.Screen) {
	mainStyle := tcell.StyleDefault.
		Background(tcell.NewHexColor(0x2E3440)).
		Foreground(tcell.NewHexColor(0xD8DEE9))
	statusStyle := mainStyle.
		Foreground(tcell.NewHexColor(0xEBCB8B)).
		Bold(true)

	screen.Fill(' ', mainStyle)

	drawTextLine(screen, 0, 0, "Band-limited impulse train", mainStyle)
	drawTextLine(screen, 0, 1, "Press [ESC] to quit.", mainStyle)
	drawTextLine(screen, 0, 2, "Press [SPACE] to pause/resume, [T] to switch tracking.", mainStyle)
	drawTextLine(screen, 0, 3, "Use keys in (?/?) to turn the buttons.", mainStyle)

	speaker.Lock()
	freq := vp.frequency.value
	harmonics := vp.harmonics.value
	polarity := vp.polarity.value
	h, maxH := vp.generator.Harmonics(), vp.generator.MaxHarmonics()
	tracking := vp.generator.Tracking()
	volume := vp.volume.Volume
	paused := vp.ctrl.Paused
	speaker.Unlock()

	polarityStatus := "unipolar"
	if polarity < 0 {
		polarityStatus = "bipolar"
	}
	pausedStatus := ""
	if paused {
		pausedStatus = " (paused)"
	}

	rows := []struct{ label, status string }{
		{"Frequency (Q/W):", fmt.Sprintf("%.2f Hz", freq)},
		{"Harmonics (A/S):", fmt.Sprintf("%.0f requested, %d of %d summed", harmonics, h, maxH)},
		{"Polarity    (P):", polarityStatus},
		{"Volume    (Z/X):", fmt.Sprintf("%.1f%s", volume, pausedStatus)},
		{"Tracking    (T):", tracking.String()},
	}
	for i, row := range rows {
		drawTextLine(screen, 0, 5+i, row.label, mainStyle)
		drawTextLine(screen, 17, 5+i, row.status, statusStyle)
	}
}

func (vp *voicePanel) handle(event tcell.Event) (changed, quit bool) {
	switch event := event.(type) {
	case *tcell.EventKey:
		if event.Key() == tcell.KeyESC {
			return false, true
		}

		if event.Key() != tcell.KeyRune {
			return false, false
		}

		speaker.Lock()
		defer speaker.Unlock()

		switch unicode.ToLower(event.Rune()) {
		case ' ':
			vp.ctrl.Paused = !vp.ctrl.Paused
		case 'q':
			vp.frequency.value = math.Max(vp.frequency.value/semitone, 1)
		case 'w':
			vp.frequency.value = math.Min(vp.frequency.value*semitone, float64(vp.sampleRate)/2)
		case 'a':
			vp.harmonics.value = math.Max(vp.harmonics.value-1, 0)
		case 's':
			vp.harmonics.value++
		case 'p':
			vp.polarity.value = -vp.polarity.value
		case 'z':
			vp.volume.Volume -= 0.1
		case 'x':
			vp.volume.Volume += 0.1
		case 't':
			if vp.generator.Tracking() == blit.PhaseLocked {
				vp.generator.SetTracking(blit.PerSample)
			} else {
				vp.generator.SetTracking(blit.PhaseLocked)
			}
		default:
			return false, false
		}
		return true, false
	}
	return false, false
}

func main() {
	sampleRate := blit.SampleRate(44100)
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/30)); err != nil {
		report(err)
	}
	defer speaker.Close()

	screen, err := tcell.NewScreen()
	if err != nil {
		report(err)
	}
	err = screen.Init()
	if err != nil {
		report(err)
	}
	defer screen.Fini()

	vp := newVoicePanel(sampleRate)

	screen.Clear()
	vp.draw(screen)
	screen.Show()

	vp.play()

	// the summed harmonic count only changes at phase wraps, so redraw now and then
	ticks := time.Tick(time.Second / 10)
	done := make(chan struct{})
	defer close(done)
	events := pollEvents(screen, done)

loop:
	for {
		select {
		case event, ok := <-events:
			if !ok {
				break loop
			}
			changed, quit := vp.handle(event)
			if quit {
				break loop
			}
			if changed {
				screen.Clear()
				vp.draw(screen)
				screen.Show()
			}
		case <-ticks:
			screen.Clear()
			vp.draw(screen)
			screen.Show()
		}
	}
}

// pollEvents forwards screen events until the screen is finalized or done is closed. The
// returned channel is closed when forwarding stops.
func pollEvents(screen tcell.Screen, done <-chan struct{}) <-chan tcell.Event {
	events := make(chan tcell.Event)
	go func() {
		defer close(events)
		for {
			event := screen.PollEvent()
			if event == nil {
				return
			}
			select {
			case events <- event:
			case <-done:
				return
			}
		}
	}()
	return events
}

func report(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
