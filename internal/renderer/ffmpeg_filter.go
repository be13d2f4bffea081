package renderer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ivlev/steps2video/internal/timeline"
)

// FrameVar is the ffmpeg expression variable holding the output frame number.
const FrameVar = "n"

// CurveExpression renders a curve shifted by start as a nested ffmpeg if(lt(...)) expression
// over variable, so external tooling evaluates exactly what Curve.Evaluate returns.
func CurveExpression(c timeline.Curve, start timeline.Frame, variable string) string {
	in, out := c.Input(), c.Output()
	last := len(in) - 1
	ex := c.Extrapolation()

	x := variable
	switch {
	case start > 0:
		x = fmt.Sprintf("(%s-%d)", variable, start)
	case start < 0:
		x = fmt.Sprintf("(%s+%d)", variable, -start)
	}

	var b strings.Builder
	depth := 0

	// if(lt(x,first),left,...)
	fmt.Fprintf(&b, "if(lt(%s,%s),%s,", x, num(in[0]), sideExpr(ex.Left, x, in[0], out[0], slope(in, out, 0)))
	depth++

	for i := 0; i < last; i++ {
		if in[i+1] == in[i] {
			continue // zero-width segment, lt() already skips it
		}
		fmt.Fprintf(&b, "if(lt(%s,%s),%s,", x, num(in[i+1]), segmentExpr(c.Easing(), x, in[i], in[i+1], out[i], out[i+1]))
		depth++
	}

	right := sideExpr(ex.Right, x, in[last], out[last], slope(in, out, last-1))
	if ex.Right == timeline.Identity {
		right = fmt.Sprintf("if(eq(%s,%s),%s,%s)", x, num(in[last]), num(out[last]), x)
	}
	b.WriteString(right)
	b.WriteString(strings.Repeat(")", depth))
	return b.String()
}

// BlendExpression is the incoming-step ratio of the transition into step k as an ffmpeg
// expression; it is 1 outside the span.
func BlendExpression(tr *timeline.Transitions, k int) string {
	span := tr.Span(k)
	if span.Frames == 0 {
		return "1"
	}
	ramp, err := timeline.Ramp(0, timeline.Frame(span.Frames), 0, 1, tr.Spec().Easing)
	if err != nil {
		return "1"
	}
	end := span.Start + timeline.Frame(span.Frames)
	return fmt.Sprintf("if(between(%s,%d,%d),%s,1)", FrameVar, span.Start, end-1, CurveExpression(ramp, span.Start, FrameVar))
}

func sideExpr(mode timeline.Extrapolate, x string, at, value, k float64) string {
	switch mode {
	case timeline.Clamp:
		return num(value)
	case timeline.Identity:
		return x
	}
	if k == 0 {
		return num(value)
	}
	return fmt.Sprintf("%s+(%s-%s)*%s", num(value), x, num(at), num(k))
}

func segmentExpr(easing timeline.Easing, x string, x0, x1, y0, y1 float64) string {
	t := fmt.Sprintf("((%s-%s)/%s)", x, num(x0), num(x1-x0))
	return fmt.Sprintf("%s+%s*%s", num(y0), easeExpr(easing, t), num(y1-y0))
}

func easeExpr(easing timeline.Easing, t string) string {
	switch easing {
	case timeline.EaseInCubic:
		return fmt.Sprintf("pow(%s,3)", t)
	case timeline.EaseOutCubic:
		return fmt.Sprintf("(1-pow(1-%s,3))", t)
	case timeline.EaseInOutCubic:
		return fmt.Sprintf("if(lt(%s,0.5),4*pow(%s,3),1-pow(-2*%s+2,3)/2)", t, t, t)
	}
	return t
}

func slope(in, out []float64, i int) float64 {
	dx := in[i+1] - in[i]
	if dx == 0 {
		return 0
	}
	return (out[i+1] - out[i]) / dx
}

func num(v float64) string {
	s := strconv.FormatFloat(v, 'g', -1, 64)
	if v < 0 {
		return "(" + s + ")"
	}
	return s
}
