package transform

import "math"

// Coordinate system conversions. Angle arguments and results are radians.
// Spherical coordinates are (rho, theta, phi) with theta the polar angle from
// the +z axis and phi the azimuth in the xy-plane.

// CartToPol converts 2D cartesian (x, y) to polar (rho, theta).
func CartToPol(x, y float64) (rho, theta float64) {
	return math.Hypot(x, y), math.Atan2(y, x)
}

// PolToCart converts polar (rho, theta) to 2D cartesian (x, y).
func PolToCart(rho, theta float64) (x, y float64) {
	return rho * math.Cos(theta), rho * math.Sin(theta)
}

// CartToSpher converts cartesian (x, y, z) to spherical (rho, theta, phi).
func CartToSpher(x, y, z float64) (rho, theta, phi float64) {
	hxy := math.Hypot(x, y)
	rho = math.Hypot(hxy, z)
	theta = math.Atan2(hxy, z)
	phi = math.Atan2(y, x)
	return
}

// SpherToCart converts spherical (rho, theta, phi) to cartesian (x, y, z).
func SpherToCart(rho, theta, phi float64) (x, y, z float64) {
	st := math.Sin(theta)
	return rho * st * math.Cos(phi), rho * st * math.Sin(phi), rho * math.Cos(theta)
}

// CartToCyl converts cartesian (x, y, z) to cylindrical (rho, theta, z).
func CartToCyl(x, y, z float64) (rho, theta, zc float64) {
	return math.Hypot(x, y), math.Atan2(y, x), z
}

// CylToCart converts cylindrical (rho, theta, z) to cartesian (x, y, z).
func CylToCart(rho, theta, z float64) (x, y, zc float64) {
	return rho * math.Cos(theta), rho * math.Sin(theta), z
}

// CylToSpher converts cylindrical (rho, theta, z) to spherical (rho, theta, phi).
func CylToSpher(rho, theta, z float64) (rhos, thetas, phi float64) {
	rhos = math.Hypot(rho, z)
	thetas = math.Atan2(rho, z)
	phi = theta
	return
}

// SpherToCyl converts spherical (rho, theta, phi) to cylindrical (rho, theta, z).
func SpherToCyl(rho, theta, phi float64) (rhoc, thetac, z float64) {
	rhoc = rho * math.Sin(theta)
	thetac = phi
	z = rho * math.Cos(theta)
	return
}
