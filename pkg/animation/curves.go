package animation

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tanema/gween/ease"
)

// easings maps normalized names to curves. Curves use gween's signature:
// t is elapsed time, b the start, c the change and d the duration.
var easings = map[string]ease.TweenFunc{
	"linear":          ease.Linear,
	"inquad":          ease.InQuad,
	"outquad":         ease.OutQuad,
	"inoutquad":       ease.InOutQuad,
	"incubic":         ease.InCubic,
	"outcubic":        ease.OutCubic,
	"inoutcubic":      ease.InOutCubic,
	"inquart":         ease.InQuart,
	"outquart":        ease.OutQuart,
	"inoutquart":      ease.InOutQuart,
	"insine":          ease.InSine,
	"outsine":         ease.OutSine,
	"inoutsine":       ease.InOutSine,
	"inexpo":          ease.InExpo,
	"outexpo":         ease.OutExpo,
	"inoutexpo":       ease.InOutExpo,
	"incirc":          ease.InCirc,
	"outcirc":         ease.OutCirc,
	"inoutcirc":       ease.InOutCirc,
	"inelastic":       ease.InElastic,
	"outelastic":      ease.OutElastic,
	"inoutelastic":    ease.InOutElastic,
	"inback":          ease.InBack,
	"outback":         ease.OutBack,
	"inoutback":       ease.InOutBack,
	"inbounce":        ease.InBounce,
	"outbounce":       ease.OutBounce,
	"inoutbounce":     ease.InOutBounce,
	"ease":            CubicBezier(0.25, 0.1, 0.25, 1.0),
	"easein":          CubicBezier(0.42, 0, 1, 1),
	"easeout":         CubicBezier(0, 0, 0.58, 1),
	"easeinout":       CubicBezier(0.42, 0, 0.58, 1),
	"standard":        CubicBezier(0.4, 0.0, 0.2, 1.0),
	"decelerate":      CubicBezier(0.0, 0.0, 0.2, 1.0),
	"accelerate":      CubicBezier(0.4, 0.0, 1.0, 1.0),
	"iosnavigation":   CubicBezier(0.22, 1.0, 0.36, 1.0),
	"fastoutslowin":   CubicBezier(0.4, 0.0, 0.2, 1.0),
	"linearoutslowin": CubicBezier(0.0, 0.0, 0.2, 1.0),
}

// Easing resolves an easing name. Names ignore case, hyphens and
// underscores ("in-out-quad", "InOutQuad"). "cubic-bezier(x1, y1, x2, y2)"
// builds a custom curve. The empty name is linear.
func Easing(name string) (ease.TweenFunc, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return ease.Linear, nil
	}
	if args, ok := strings.CutPrefix(key, "cubic-bezier("); ok {
		return parseBezier(name, strings.TrimSuffix(args, ")"))
	}
	key = strings.NewReplacer("-", "", "_", "", " ", "").Replace(key)
	if fn, ok := easings[key]; ok {
		return fn, nil
	}
	return nil, fmt.Errorf("animation: unknown easing %q", name)
}

func parseBezier(name, args string) (ease.TweenFunc, error) {
	parts := strings.Split(args, ",")
	if len(parts) != 4 {
		return nil, fmt.Errorf("animation: %q: cubic-bezier takes 4 values", name)
	}
	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("animation: %q: %w", name, err)
		}
		v[i] = f
	}
	return CubicBezier(v[0], v[1], v[2], v[3]), nil
}

// CubicBezier returns an easing matching CSS cubic-bezier(). The curve
// runs from (0,0) to (1,1) with control points (x1,y1) and (x2,y2).
func CubicBezier(x1, y1, x2, y2 float64) ease.TweenFunc {
	curve := func(t float64) float64 {
		if t <= 0 {
			return 0
		}
		if t >= 1 {
			return 1
		}

		u := t
		// Newton-Raphson converges quickly for most values.
		for range 8 {
			x := sampleCurve(x1, x2, u) - t
			if math.Abs(x) < 1e-7 {
				return sampleCurve(y1, y2, clampUnit(u))
			}
			dx := sampleCurveDerivative(x1, x2, u)
			if math.Abs(dx) < 1e-7 {
				break
			}
			u -= x / dx
		}

		// Bisection keeps the solution in [0,1] when Newton stalls.
		lo, hi := 0.0, 1.0
		u = clampUnit(u)
		for range 12 {
			x := sampleCurve(x1, x2, u) - t
			if math.Abs(x) < 1e-7 {
				break
			}
			if x > 0 {
				hi = u
			} else {
				lo = u
			}
			u = (lo + hi) * 0.5
		}
		return sampleCurve(y1, y2, u)
	}
	return func(t, b, c, d float32) float32 {
		if d <= 0 {
			return b + c
		}
		return b + c*float32(curve(float64(t/d)))
	}
}

func sampleCurve(a, b, t float64) float64 {
	inv := 1 - t
	return 3*inv*inv*t*a + 3*inv*t*t*b + t*t*t
}

func sampleCurveDerivative(a, b, t float64) float64 {
	inv := 1 - t
	return 3*inv*inv*a + 6*inv*t*(b-a) + 3*t*t*(1-b)
}

func clampUnit(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 1 {
		return 1
	}
	return value
}
