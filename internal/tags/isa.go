package tags

// EquipmentCodes maps equipment letter prefixes to the equipment type.
var EquipmentCodes = map[string]string{
	"V":  "Vessel",
	"P":  "Pump",
	"K":  "Compressor",
	"E":  "Exchanger",
	"T":  "Tower",
	"D":  "Drum",
	"R":  "Reactor",
	"S":  "Separator",
	"M":  "Motor",
	"C":  "Column",
	"F":  "Filter",
	"H":  "Heater",
	"B":  "Blower",
	"G":  "Generator",
	"TK": "Tank",
	"AG": "Agitator",
	"PK": "Package",
}

// MeasuredVariables is the ISA 5.1 first-letter table.
var MeasuredVariables = map[byte]string{
	'A': "Analysis",
	'B': "Burner/Combustion",
	'C': "Conductivity",
	'D': "Density",
	'E': "Voltage",
	'F': "Flow",
	'G': "Gauging",
	'H': "Hand",
	'I': "Current",
	'J': "Power",
	'K': "Time",
	'L': "Level",
	'M': "Moisture",
	'N': "User's Choice",
	'O': "User's Choice",
	'P': "Pressure",
	'Q': "Quantity",
	'R': "Radiation",
	'S': "Speed",
	'T': "Temperature",
	'U': "Multivariable",
	'V': "Vibration",
	'W': "Weight",
	'X': "Unclassified",
	'Y': "Event",
	'Z': "Position",
}

// FunctionLetters is the ISA 5.1 succeeding-letter table.
var FunctionLetters = map[byte]string{
	'A': "Alarm",
	'C': "Control",
	'D': "Differential",
	'E': "Element",
	'F': "Ratio",
	'G': "Glass/Gauge",
	'H': "High",
	'I': "Indicate",
	'K': "Control Station",
	'L': "Low",
	'O': "Orifice",
	'P': "Point",
	'Q': "Totalize",
	'R': "Record",
	'S': "Switch",
	'T': "Transmit",
	'U': "Multifunction",
	'V': "Valve",
	'W': "Well",
	'Y': "Relay/Compute",
}

// LineMaterials maps line service codes to the usual piping material.
var LineMaterials = map[string]string{
	"P":  "Carbon Steel",
	"PG": "Carbon Steel",
	"PL": "Carbon Steel",
	"CW": "Carbon Steel",
	"FW": "Carbon Steel",
	"ST": "Alloy Steel",
	"HS": "Alloy Steel",
	"LS": "Carbon Steel",
	"IA": "Stainless Steel",
	"PA": "Galvanized Steel",
	"N":  "Carbon Steel",
	"DW": "Stainless Steel",
	"CH": "Stainless Steel",
	"FG": "Carbon Steel",
}
