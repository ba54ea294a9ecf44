package model

// Locality holds one Medicare locality's Geographic Practice Cost Indices.
type Locality struct {
	Name     string  `json:"name"`
	State    string  `json:"state"`
	Locality string  `json:"locality"`
	WorkGPCI float64 `json:"work_gpci"`
	PEGPCI   float64 `json:"pe_gpci"`
	MPGPCI   float64 `json:"mp_gpci"`
	MAC      string  `json:"mac,omitempty"`
}

// GPCITable maps a stable "STATE-LOCALITY" key to its indices for one year.
type GPCITable map[string]Locality
