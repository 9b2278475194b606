package math

// Mat3 is a 3x3 matrix in column-major order.
type Mat3 [9]float32

// Identity3 returns a 3x3 identity matrix.
func Identity3() Mat3 {
	return Mat3{1, 0, 0, 0, 1, 0, 0, 0, 1}
}

// Transpose returns the transposed matrix.
func (m Mat3) Transpose() Mat3 {
	return Mat3{
		m[0], m[3], m[6],
		m[1], m[4], m[7],
		m[2], m[5], m[8],
	}
}

// Inverse returns the inverse of the matrix, computed in float64.
// Returns identity if the matrix is singular.
func (m Mat3) Inverse() Mat3 {
	a := [9]float64{}
	for i, v := range m {
		a[i] = float64(v)
	}
	det := a[0]*(a[4]*a[8]-a[7]*a[5]) -
		a[3]*(a[1]*a[8]-a[7]*a[2]) +
		a[6]*(a[1]*a[5]-a[4]*a[2])
	if det == 0 {
		return Identity3()
	}
	inv := 1 / det
	return Mat3{
		float32((a[4]*a[8] - a[7]*a[5]) * inv),
		float32((a[7]*a[2] - a[1]*a[8]) * inv),
		float32((a[1]*a[5] - a[4]*a[2]) * inv),
		float32((a[6]*a[5] - a[3]*a[8]) * inv),
		float32((a[0]*a[8] - a[6]*a[2]) * inv),
		float32((a[3]*a[2] - a[0]*a[5]) * inv),
		float32((a[3]*a[7] - a[6]*a[4]) * inv),
		float32((a[6]*a[1] - a[0]*a[7]) * inv),
		float32((a[0]*a[4] - a[3]*a[1]) * inv),
	}
}

// Ptr returns a pointer to the first element (for OpenGL uniform calls).
func (m *Mat3) Ptr() *float32 {
	return &m[0]
}
