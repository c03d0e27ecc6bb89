package orphadata

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// looseString accepts a JSON string or number and ignores any other type.
// Zero and empty values read as "" so fallbacks behave like missing fields.
type looseString string

func (s *looseString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}
	switch data[0] {
	case '"':
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return nil
		}
		*s = looseString(v)
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		f, err := strconv.ParseFloat(string(data), 64)
		if err != nil || f == 0 {
			return nil
		}
		*s = looseString(data)
	}
	return nil
}

// looseInt accepts a JSON number or a numeric string.
type looseInt struct {
	Value int
	Valid bool
}

func (i *looseInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 1 && data[0] == '"' {
		data = data[1 : len(data)-1]
	}
	v, err := strconv.Atoi(string(data))
	if err != nil {
		return nil
	}
	*i = looseInt{Value: v, Valid: true}
	return nil
}

type catalogResponse struct {
	Data *struct {
		Results json.RawMessage `json:"results"`
	} `json:"data"`
}

type catalogItem struct {
	ORPHAcode     looseInt    `json:"ORPHAcode"`
	PreferredTerm looseString `json:"preferredTerm"`
}

type crossReferenceResponse struct {
	Data *struct {
		Results *crossReferenceResults `json:"results"`
	} `json:"data"`
}

type crossReferenceResults struct {
	PreferredTermSpaced looseString `json:"Preferred term"`
	Name                looseString `json:"Name"`
	PreferredTerm       looseString `json:"PreferredTerm"`
	SynonymList         []struct {
		Synonym looseString `json:"Synonym"`
	} `json:"SynonymList"`
	SummaryInformation []struct {
		TextSection *struct {
			Contents looseString `json:"Contents"`
		} `json:"TextSection"`
	} `json:"SummaryInformation"`
	Summary           looseString `json:"Summary"`
	Definition        looseString `json:"Definition"`
	ExternalReference []struct {
		Source    looseString `json:"Source"`
		Reference looseString `json:"Reference"`
	} `json:"ExternalReference"`
}

type namedRef struct {
	Name looseString `json:"Name"`
}

type phenotypeResponse struct {
	HPODisorderAssociationList []struct {
		HPO *struct {
			HPOId   looseString `json:"HPOId"`
			HPOTerm looseString `json:"HPOTerm"`
		} `json:"HPO"`
		HPOFrequency *namedRef `json:"HPOFrequency"`
	} `json:"HPODisorderAssociationList"`
}

type geneResponse struct {
	DisorderGeneAssociationList []struct {
		Gene *struct {
			Symbol looseString `json:"Symbol"`
			Name   looseString `json:"Name"`
		} `json:"Gene"`
		DisorderGeneAssociationType *namedRef `json:"DisorderGeneAssociationType"`
	} `json:"DisorderGeneAssociationList"`
}

type epidemiologyResponse struct {
	PrevalenceList []struct {
		PrevalenceClass      *namedRef   `json:"PrevalenceClass"`
		ValMoy               looseString `json:"ValMoy"`
		PrevalenceGeographic *namedRef   `json:"PrevalenceGeographic"`
	} `json:"PrevalenceList"`
}

func (n *namedRef) name() string {
	if n == nil {
		return ""
	}
	return string(n.Name)
}

func firstNonEmpty(values ...looseString) string {
	for _, v := range values {
		if v != "" {
			return string(v)
		}
	}
	return ""
}
