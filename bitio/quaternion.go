package bitio

import "math"

// quatComponentBits is the per-component width used for the three stored
// components of a smallest-three-compressed quaternion. 2 (largest-index)
// + 3*10 = 32 bits exactly, matching the u32 wire field in the snapshot
// format.
const quatComponentBits = 10

// quatMaxComponent is the largest magnitude any of the three stored
// components can have: each of them is no larger in magnitude than the
// largest component, and the two squared sum to at most 1, so the
// remaining three always lie in [-1/sqrt(2), 1/sqrt(2)].
var quatMaxComponent = float32(1.0 / math.Sqrt2)

// WriteQuaternionSmallestThree compresses a unit quaternion (x, y, z, w)
// into 32 bits: the 2-bit index of the largest-magnitude component, then
// the other three components as 10-bit fixed point in [-1/sqrt(2),
// 1/sqrt(2)].
//
// The dropped (largest) component's sign is never stored: the quaternion
// is first negated in full if that component is negative, since q and -q
// represent the same rotation. The decoder always reconstructs it as the
// non-negative root of 1 minus the sum of the other three squared, which
// is why 2 + 3*10 bits is enough — there is no separate sign bit to spend.
func (b *Buffer) WriteQuaternionSmallestThree(x, y, z, w float32) error {
	q := [4]float32{x, y, z, w}

	largest := 0
	largestAbs := abs32(q[0])
	for i := 1; i < 4; i++ {
		if a := abs32(q[i]); a > largestAbs {
			largest = i
			largestAbs = a
		}
	}

	if q[largest] < 0 {
		q[0], q[1], q[2], q[3] = -q[0], -q[1], -q[2], -q[3]
	}

	if err := b.WriteBitsU8(uint8(largest), 2); err != nil { //nolint:gosec
		return err
	}

	for i := 0; i < 4; i++ {
		if i == largest {
			continue
		}

		code := quantizeQuatComponent(q[i])
		if err := b.WriteBitsU16(code, quatComponentBits); err != nil {
			return err
		}
	}

	return nil
}

// ReadQuaternionSmallestThree decodes a quaternion previously written with
// WriteQuaternionSmallestThree, renormalizing to correct for quantization
// error.
func (b *Buffer) ReadQuaternionSmallestThree() (x, y, z, w float32, err error) {
	largestRaw, err := b.ReadBitsU8(2)
	if err != nil {
		return 0, 0, 0, 0, err
	}
	largest := int(largestRaw)

	var q [4]float32
	var sumSq float64

	for i := 0; i < 4; i++ {
		if i == largest {
			continue
		}

		code, rErr := b.ReadBitsU16(quatComponentBits)
		if rErr != nil {
			return 0, 0, 0, 0, rErr
		}

		c := dequantizeQuatComponent(code)
		q[i] = c
		sumSq += float64(c) * float64(c)
	}

	dropped := 0.0
	if sumSq < 1 {
		dropped = math.Sqrt(1 - sumSq)
	}
	q[largest] = float32(dropped)

	q = normalizeQuat(q)

	return q[0], q[1], q[2], q[3], nil
}

func quantizeQuatComponent(c float32) uint16 {
	if c > quatMaxComponent {
		c = quatMaxComponent
	}
	if c < -quatMaxComponent {
		c = -quatMaxComponent
	}

	const maxCode = (1 << quatComponentBits) - 1
	normalized := (c + quatMaxComponent) / (2 * quatMaxComponent)
	code := int64(math.Round(float64(normalized) * maxCode))

	if code < 0 {
		code = 0
	}
	if code > maxCode {
		code = maxCode
	}

	return uint16(code)
}

func dequantizeQuatComponent(code uint16) float32 {
	const maxCode = (1 << quatComponentBits) - 1

	normalized := float64(code) / maxCode

	return float32(normalized*2*float64(quatMaxComponent) - float64(quatMaxComponent))
}

func normalizeQuat(q [4]float32) [4]float32 {
	norm := math.Sqrt(float64(q[0])*float64(q[0]) + float64(q[1])*float64(q[1]) + float64(q[2])*float64(q[2]) + float64(q[3])*float64(q[3]))
	if norm == 0 {
		return q
	}

	inv := float32(1 / norm)

	return [4]float32{q[0] * inv, q[1] * inv, q[2] * inv, q[3] * inv}
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}

	return v
}
