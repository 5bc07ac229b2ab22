// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ode

// erkdat holds the Butcher tableau and auxiliary data of one explicit
// Runge-Kutta method.
//  a     -- lower-triangular coefficients (row i has i entries)
//  b     -- solution weights
//  c     -- stage abscissae (row sums of a)
//  e     -- embedded error weights ±(b - b̂); nil means no estimator (only
//           the magnitude of e⋅k enters the error norm)
//  p     -- classical order
//  q     -- order used in the stepsize exponent: the lower of the orders of
//           the solution and of the embedded formula
//  fsal  -- first stage same as last
//  dense -- a continuous extension is available
//  slim  -- stability limit along the negative real axis (stiffness detection)
type erkdat struct {
	p, q  int
	fsal  bool
	dense bool
	slim  float64
	a     [][]float64
	b     []float64
	c     []float64
	e     []float64
}

// erkdata maps method keys to tableaux. The methods without an e vector run
// with constant stepsize only
var erkdata = map[string]*erkdat{

	// forward Euler
	"FwEuler": {
		p: 1,
		a: [][]float64{{}},
		b: []float64{1.0},
		c: []float64{0.0},
	},

	// Runge, order 2 (midpoint)
	"Rk2": {
		p: 2,
		a: [][]float64{
			{},
			{1.0 / 2.0},
		},
		b: []float64{0.0, 1.0},
		c: []float64{0.0, 1.0 / 2.0},
	},

	// Runge, order 3
	"Rk3": {
		p: 3,
		a: [][]float64{
			{},
			{1.0 / 2.0},
			{-1.0, 2.0},
		},
		b: []float64{1.0 / 6.0, 2.0 / 3.0, 1.0 / 6.0},
		c: []float64{0.0, 1.0 / 2.0, 1.0},
	},

	// Heun, order 3
	"Heun3": {
		p: 3,
		a: [][]float64{
			{},
			{1.0 / 3.0},
			{0.0, 2.0 / 3.0},
		},
		b: []float64{1.0 / 4.0, 0.0, 3.0 / 4.0},
		c: []float64{0.0, 1.0 / 3.0, 2.0 / 3.0},
	},

	// classical Runge-Kutta, order 4
	"Rk4": {
		p: 4,
		a: [][]float64{
			{},
			{1.0 / 2.0},
			{0.0, 1.0 / 2.0},
			{0.0, 0.0, 1.0},
		},
		b: []float64{1.0 / 6.0, 1.0 / 3.0, 1.0 / 3.0, 1.0 / 6.0},
		c: []float64{0.0, 1.0 / 2.0, 1.0 / 2.0, 1.0},
	},

	// Runge-Kutta 3/8 rule, order 4
	"Rk4alt": {
		p: 4,
		a: [][]float64{
			{},
			{1.0 / 3.0},
			{-1.0 / 3.0, 1.0},
			{1.0, -1.0, 1.0},
		},
		b: []float64{1.0 / 8.0, 3.0 / 8.0, 3.0 / 8.0, 1.0 / 8.0},
		c: []float64{0.0, 1.0 / 3.0, 2.0 / 3.0, 1.0},
	},

	// modified Euler, order 2(1)
	"MdEuler": {
		p: 2, q: 1,
		a: [][]float64{
			{},
			{1.0},
		},
		b: []float64{1.0 / 2.0, 1.0 / 2.0},
		c: []float64{0.0, 1.0},
		e: []float64{-1.0 / 2.0, 1.0 / 2.0},
	},

	// Merson, order 4(3)
	"Merson4": {
		p: 4, q: 3,
		a: [][]float64{
			{},
			{1.0 / 3.0},
			{1.0 / 6.0, 1.0 / 6.0},
			{1.0 / 8.0, 0.0, 3.0 / 8.0},
			{1.0 / 2.0, 0.0, -3.0 / 2.0, 2.0},
		},
		b: []float64{1.0 / 6.0, 0.0, 0.0, 2.0 / 3.0, 1.0 / 6.0},
		c: []float64{0.0, 1.0 / 3.0, 1.0 / 3.0, 1.0 / 2.0, 1.0},
		e: []float64{1.0 / 15.0, 0.0, -3.0 / 10.0, 4.0 / 15.0, -1.0 / 30.0},
	},

	// Zonneveld, order 4(3)
	"Zonneveld4": {
		p: 4, q: 3,
		a: [][]float64{
			{},
			{1.0 / 2.0},
			{0.0, 1.0 / 2.0},
			{0.0, 0.0, 1.0},
			{5.0 / 32.0, 7.0 / 32.0, 13.0 / 32.0, -1.0 / 32.0},
		},
		b: []float64{1.0 / 6.0, 1.0 / 3.0, 1.0 / 3.0, 1.0 / 6.0, 0.0},
		c: []float64{0.0, 1.0 / 2.0, 1.0 / 2.0, 1.0, 3.0 / 4.0},
		e: []float64{2.0 / 3.0, -2.0, -2.0, -2.0, 16.0 / 3.0},
	},

	// Fehlberg, order 4(5)
	"Fehlberg4": {
		p: 4, q: 4,
		a: [][]float64{
			{},
			{1.0 / 4.0},
			{3.0 / 32.0, 9.0 / 32.0},
			{1932.0 / 2197.0, -7200.0 / 2197.0, 7296.0 / 2197.0},
			{439.0 / 216.0, -8.0, 3680.0 / 513.0, -845.0 / 4104.0},
			{-8.0 / 27.0, 2.0, -3544.0 / 2565.0, 1859.0 / 4104.0, -11.0 / 40.0},
		},
		b: []float64{25.0 / 216.0, 0.0, 1408.0 / 2565.0, 2197.0 / 4104.0, -1.0 / 5.0, 0.0},
		c: []float64{0.0, 1.0 / 4.0, 3.0 / 8.0, 12.0 / 13.0, 1.0, 1.0 / 2.0},
		e: []float64{1.0 / 360.0, 0.0, -128.0 / 4275.0, -2197.0 / 75240.0, 1.0 / 50.0, 2.0 / 55.0},
	},

	// Dormand-Prince, order 5(4), FSAL, with continuous extension
	"DoPri5": {
		p: 5, q: 4, fsal: true, dense: true, slim: 3.3,
		a: [][]float64{
			{},
			{1.0 / 5.0},
			{3.0 / 40.0, 9.0 / 40.0},
			{44.0 / 45.0, -56.0 / 15.0, 32.0 / 9.0},
			{19372.0 / 6561.0, -25360.0 / 2187.0, 64448.0 / 6561.0, -212.0 / 729.0},
			{9017.0 / 3168.0, -355.0 / 33.0, 46732.0 / 5247.0, 49.0 / 176.0, -5103.0 / 18656.0},
			{35.0 / 384.0, 0.0, 500.0 / 1113.0, 125.0 / 192.0, -2187.0 / 6784.0, 11.0 / 84.0},
		},
		b: []float64{35.0 / 384.0, 0.0, 500.0 / 1113.0, 125.0 / 192.0, -2187.0 / 6784.0, 11.0 / 84.0, 0.0},
		c: []float64{0.0, 1.0 / 5.0, 3.0 / 10.0, 4.0 / 5.0, 8.0 / 9.0, 1.0, 1.0},
		e: []float64{71.0 / 57600.0, 0.0, -71.0 / 16695.0, 71.0 / 1920.0, -17253.0 / 339200.0, 22.0 / 525.0, -1.0 / 40.0},
	},

	// Verner, order 6(5)
	"Verner6": {
		p: 6, q: 5,
		a: [][]float64{
			{},
			{1.0 / 6.0},
			{4.0 / 75.0, 16.0 / 75.0},
			{5.0 / 6.0, -8.0 / 3.0, 5.0 / 2.0},
			{-165.0 / 64.0, 55.0 / 6.0, -425.0 / 64.0, 85.0 / 96.0},
			{12.0 / 5.0, -8.0, 4015.0 / 612.0, -11.0 / 36.0, 88.0 / 255.0},
			{-8263.0 / 15000.0, 124.0 / 75.0, -643.0 / 680.0, -81.0 / 250.0, 2484.0 / 10625.0, 0.0},
			{3501.0 / 1720.0, -300.0 / 43.0, 297275.0 / 52632.0, -319.0 / 2322.0, 24068.0 / 84065.0, 0.0, 3850.0 / 26703.0},
		},
		b: []float64{3.0 / 40.0, 0.0, 875.0 / 2244.0, 23.0 / 72.0, 264.0 / 1955.0, 0.0, 125.0 / 11592.0, 43.0 / 616.0},
		c: []float64{0.0, 1.0 / 6.0, 4.0 / 15.0, 2.0 / 3.0, 5.0 / 6.0, 1.0, 1.0 / 15.0, 1.0},
		e: []float64{-1.0 / 160.0, 0.0, -125.0 / 17952.0, 1.0 / 144.0, -12.0 / 1955.0, -3.0 / 44.0, 125.0 / 11592.0, 43.0 / 616.0},
	},

	// Fehlberg, order 7(8)
	"Fehlberg7": {
		p: 7, q: 7,
		a: [][]float64{
			{},
			{2.0 / 27.0},
			{1.0 / 36.0, 1.0 / 12.0},
			{1.0 / 24.0, 0.0, 1.0 / 8.0},
			{5.0 / 12.0, 0.0, -25.0 / 16.0, 25.0 / 16.0},
			{1.0 / 20.0, 0.0, 0.0, 1.0 / 4.0, 1.0 / 5.0},
			{-25.0 / 108.0, 0.0, 0.0, 125.0 / 108.0, -65.0 / 27.0, 125.0 / 54.0},
			{31.0 / 300.0, 0.0, 0.0, 0.0, 61.0 / 225.0, -2.0 / 9.0, 13.0 / 900.0},
			{2.0, 0.0, 0.0, -53.0 / 6.0, 704.0 / 45.0, -107.0 / 9.0, 67.0 / 90.0, 3.0},
			{-91.0 / 108.0, 0.0, 0.0, 23.0 / 108.0, -976.0 / 135.0, 311.0 / 54.0, -19.0 / 60.0, 17.0 / 6.0, -1.0 / 12.0},
			{2383.0 / 4100.0, 0.0, 0.0, -341.0 / 164.0, 4496.0 / 1025.0, -301.0 / 82.0, 2133.0 / 4100.0, 45.0 / 82.0, 45.0 / 164.0, 18.0 / 41.0},
			{3.0 / 205.0, 0.0, 0.0, 0.0, 0.0, -6.0 / 41.0, -3.0 / 205.0, -3.0 / 41.0, 3.0 / 41.0, 6.0 / 41.0, 0.0},
			{-1777.0 / 4100.0, 0.0, 0.0, -341.0 / 164.0, 4496.0 / 1025.0, -289.0 / 82.0, 2193.0 / 4100.0, 51.0 / 82.0, 33.0 / 164.0, 12.0 / 41.0, 0.0, 1.0},
		},
		b: []float64{41.0 / 840.0, 0.0, 0.0, 0.0, 0.0, 34.0 / 105.0, 9.0 / 35.0, 9.0 / 35.0, 9.0 / 280.0, 9.0 / 280.0, 41.0 / 840.0, 0.0, 0.0},
		c: []float64{0.0, 2.0 / 27.0, 1.0 / 9.0, 1.0 / 6.0, 5.0 / 12.0, 1.0 / 2.0, 5.0 / 6.0, 1.0 / 6.0, 2.0 / 3.0, 1.0 / 3.0, 1.0, 0.0, 1.0},
		e: []float64{41.0 / 840.0, 0.0, 0.0, 0.0, 0.0, 0.0, 0.0, 0.0, 0.0, 0.0, 41.0 / 840.0, -41.0 / 840.0, -41.0 / 840.0},
	},

	// Dormand-Prince, order 8(5,3), with continuous extension of order 7
	"DoPri8": {
		p: 8, q: 7, dense: true, slim: 6.1,
		a: [][]float64{
			{},
			{5.26001519587677318785587544488e-2},
			{1.97250569845378994544595329183e-2, 5.91751709536136983633785987549e-2},
			{2.95875854768068491816892993775e-2, 0.0, 8.87627564304205475450678981324e-2},
			{2.41365134159266685502369798665e-1, 0.0, -8.84549479328286085344864962717e-1, 9.24834003261792003115737966543e-1},
			{3.7037037037037037037037037037e-2, 0.0, 0.0, 1.70828608729473871279604482173e-1, 1.25467687566822425016691814123e-1},
			{3.7109375e-2, 0.0, 0.0, 1.70252211019544039314978060272e-1, 6.02165389804559606850219397283e-2, -1.7578125e-2},
			{3.70920001185047927108779319836e-2, 0.0, 0.0, 1.70383925712239993810214054705e-1, 1.07262030446373284651809199168e-1, -1.53194377486244017527936158236e-2, 8.27378916381402288758473766002e-3},
			{6.24110958716075717114429577812e-1, 0.0, 0.0, -3.36089262944694129406857109825e0, -8.68219346841726006818189891453e-1, 2.75920996994467083049415600797e1, 2.01540675504778934086186788979e1, -4.34898841810699588477366255144e1},
			{4.77662536438264365890433908527e-1, 0.0, 0.0, -2.48811461997166764192642586468e0, -5.90290826836842996371446475743e-1, 2.12300514481811942347288949897e1, 1.52792336328824235832596922938e1, -3.32882109689848629194453265587e1, -2.03312017085086261358222928593e-2},
			{-9.3714243008598732571704021658e-1, 0.0, 0.0, 5.18637242884406370830023853209e0, 1.09143734899672957818500254654e0, -8.14978701074692612513997267357e0, -1.85200656599969598641566180701e1, 2.27394870993505042818970056734e1, 2.49360555267965238987089396762e0, -3.0467644718982195003823669022e0},
			{2.27331014751653820792359768449e0, 0.0, 0.0, -1.05344954667372501984066689879e1, -2.00087205822486249909675718444e0, -1.79589318631187989172765950534e1, 2.79488845294199600508499808837e1, -2.85899827713502369474065508674e0, -8.87285693353062954433549289258e0, 1.23605671757943030647266201528e1, 6.43392746015763530355970484046e-1},
		},
		b: []float64{5.42937341165687622380535766363e-2, 0.0, 0.0, 0.0, 0.0, 4.45031289275240888144113950566e0, 1.89151789931450038304281599044e0, -5.8012039600105847814672114227e0, 3.1116436695781989440891606237e-1, -1.52160949662516078556178806805e-1, 2.01365400804030348374776537501e-1, 4.47106157277725905176885569043e-2},
		c: []float64{0.0, 5.26001519587677318785587544488e-2, 7.89002279381515978178381316732e-2, 1.18350341907227396726757197510e-1, 2.81649658092772603273242802490e-1, 3.33333333333333333333333333333e-1, 2.5e-1, 3.07692307692307692307692307692e-1, 6.51282051282051282051282051282e-1, 6.0e-1, 8.57142857142857142857142857142e-1, 1.0},
		e: []float64{1.312004499419488073250102996e-2, 0.0, 0.0, 0.0, 0.0, -1.225156446376204440720569753e0, -4.957589496572501915214079952e-1, 1.664377182454986536961530415e0, -3.503288487499736816886487290e-1, 3.341791187130174790297318841e-1, 8.192320648511571246570742613e-2, -2.235530786388629525884427845e-2},
	},
}

// dp8bhh holds the 3rd-order weights of the mixed 8(5,3) error estimator of
// Dormand-Prince 8
var dp8bhh = []float64{
	0.244094488188976377952755905512e0,
	0.733846688281611857341361741547e0,
	0.220588235294117647058823529412e-1,
}

// dp8cd holds the abscissae of the three extra stages of the continuous
// extension of Dormand-Prince 8
var dp8cd = []float64{0.1e0, 0.2e0, 0.777777777777777777777777777778e0}

// dp8ad holds the coefficients of the three extra stages of the continuous
// extension of Dormand-Prince 8; row i maps onto stages [0..11], then column
// 12 (applied to the last stage), then the extra stages [13..12+i]
var dp8ad = [][]float64{
	{5.61675022830479523392909219681e-2, 0.0, 0.0, 0.0, 0.0, 0.0, 2.53500210216624811088794765333e-1, -2.46239037470802489917441475441e-1, -1.24191423263816360469010140626e-1, 1.5329179827876569731206322685e-1, 8.20105229563468988491666602057e-3, 7.56789766054569976138603589584e-3, -8.298e-3},
	{3.18346481635021405060768473261e-2, 0.0, 0.0, 0.0, 0.0, 2.83009096723667755288322961402e-2, 5.35419883074385676223797384372e-2, -5.49237485713909884646569340306e-2, 0.0, 0.0, -1.08347328697249322858509316994e-4, 3.82571090835658412954920192323e-4, -3.40465008687404560802977114492e-4, 1.41312443674632500278074618366e-1},
	{-4.28896301583791923408573538692e-1, 0.0, 0.0, 0.0, 0.0, -4.69762141536116384314449447206e0, 7.68342119606259904184240953878e0, 4.06898981839711007970213554331e0, 3.56727187455281109270669543021e-1, 0.0, 0.0, 0.0, -1.39902416515901462129418009734e-3, 2.9475147891527723389556272149e0, -9.15095847217987001081870187138e0},
}

// dp8d holds the D coefficients of the continuous extension of
// Dormand-Prince 8; each row maps onto stages [0..11], then column 12
// (applied to the last stage), then the three extra stages [13..15]
var dp8d = [][]float64{
	{-0.84289382761090128651353491142e1, 0.0, 0.0, 0.0, 0.0, 0.56671495351937776962531783590e0, -0.30689499459498916912797304727e1, 0.23846676565120698287728149680e1, 0.21170345824450282767155149946e1, -0.87139158377797299206789907490e0, 0.22404374302607882758541771650e1, 0.63157877876946881815570249290e0, -0.88990336451333310820698117400e-1, 0.18148505520854727256656404962e2, -0.91946323924783554000451984436e1, -0.44360363875948939664310572000e1},
	{0.10427508642579134603413151009e2, 0.0, 0.0, 0.0, 0.0, 0.24228349177525818288430175319e3, 0.16520045171727028198505394887e3, -0.37454675472269020279518312152e3, -0.22113666853125306036270938578e2, 0.77334326684722638389603898808e1, -0.30674084731089398182061213626e2, -0.93321305264302278729567221706e1, 0.15697238121770843886131091075e2, -0.31139403219565177677282850411e2, -0.93529243588444783865713862664e1, 0.35816841486394083752465898540e2},
	{0.19985053242002433820987653617e2, 0.0, 0.0, 0.0, 0.0, -0.38703730874935176555105901742e3, -0.18917813819516756882830838328e3, 0.52780815920542364900561016686e3, -0.11573902539959630126141871134e2, 0.68812326946963000169666922661e1, -0.10006050966910838403183860980e1, 0.77771377980534432092869265740e0, -0.27782057523535084065932004339e1, -0.60196695231264120758267380846e2, 0.84320405506677161018159903784e2, 0.11992291136182789328035130030e2},
	{-0.69393855371975054667638998954e2, 0.0, 0.0, 0.0, 0.0, -0.85409668689371921877913458774e3, 0.15964402945066227152227735871e3, -0.33807717682949045101064661862e3, 0.10354958589737603965468176811e3, -0.91186320422565838578754762151e1, -0.25269890283021171536247795218e2, -0.23331541438286730487820464731e2, -0.93925570745267313333259319521e1, 0.35816841486394083752465898540e2, -0.67892807729182272164625051160e2, -0.13325947163775729832931244559e2},
}

// dp5d holds the D coefficients of the 5th-order continuous extension of
// Dormand-Prince 5
var dp5d = []float64{
	-12715105075.0 / 11282082432.0,
	0.0,
	87487479700.0 / 32700410799.0,
	-10690763975.0 / 1880347072.0,
	701980252875.0 / 199316789632.0,
	-1453857185.0 / 822651844.0,
	69997945.0 / 29380423.0,
}
