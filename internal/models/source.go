package models

// Source names a dataset exposed by the API. It has no internal structure.
type Source = string

// SourceMetadata describes a dataset. Field tags follow the API's wire keys.
type SourceMetadata struct {
	ID              string `json:"ID_Source,omitempty" yaml:"ID_Source,omitempty"`
	Name            string `json:"Nom_Source,omitempty" yaml:"Nom_Source,omitempty"`
	Producer        string `json:"Producteur,omitempty" yaml:"Producteur,omitempty"`
	DatasetName     string `json:"Nom_Jeu_Donnees,omitempty" yaml:"Nom_Jeu_Donnees,omitempty"`
	Description     string `json:"Description,omitempty" yaml:"Description,omitempty"`
	Units           string `json:"Unites,omitempty" yaml:"Unites,omitempty"`
	Coverage        string `json:"Couverture_Temporelle,omitempty" yaml:"Couverture_Temporelle,omitempty"`
	FileFormat      string `json:"Format_Fichier,omitempty" yaml:"Format_Fichier,omitempty"`
	RetrievalMethod string `json:"Methode_Recuperation,omitempty" yaml:"Methode_Recuperation,omitempty"`
	AccessLink      string `json:"Lien_Acces,omitempty" yaml:"Lien_Acces,omitempty"`
	APIAccess       string `json:"Acces_API,omitempty" yaml:"Acces_API,omitempty"`
	UpdateFrequency string `json:"Frequence_Maj,omitempty" yaml:"Frequence_Maj,omitempty"`
	LastUpdate      string `json:"Date_Derniere_Maj,omitempty" yaml:"Date_Derniere_Maj,omitempty"`
	Contacts        string `json:"Personnes_En_Charge,omitempty" yaml:"Personnes_En_Charge,omitempty"`
}

// Catalog is the source list plus whatever metadata the API could provide.
// Metadata may be empty when the metadata endpoint is unavailable.
type Catalog struct {
	Sources  []Source
	Metadata map[Source]SourceMetadata
}

// Describe returns a one-line description for a source, or "".
func (c Catalog) Describe(source Source) string {
	meta, ok := c.Metadata[source]
	if !ok {
		return ""
	}
	switch {
	case meta.Name != "" && meta.Description != "":
		return meta.Name + " - " + meta.Description
	case meta.Description != "":
		return meta.Description
	default:
		return meta.Name
	}
}
