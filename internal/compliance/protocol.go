package compliance

import (
	"github.com/hyperjump/docstudio/internal/models"
	"github.com/hyperjump/docstudio/internal/prompt"
)

// ProtocolInstruction renders a saved protocol into a custom Instruction.
func ProtocolInstruction(b *prompt.Builder, domain string, p *models.PromptRecord) (Instruction, error) {
	if err := p.Validate(); err != nil {
		return Instruction{}, err
	}
	citation := "No"
	if p.CitationRequired {
		citation = "Yes"
	}
	text, err := b.Render(prompt.Protocol, map[string]string{
		"protocol_name":        p.ProtocolName,
		"protocol_description": p.ProtocolDescription,
		"what_to_flag":         p.WhatToFlag,
		"severity_threshold":   p.SeverityThreshold,
		"output_format":        p.OutputFormat,
		"citation_required":    citation,
		"language":             p.Language,
	})
	if err != nil {
		return Instruction{}, err
	}
	return Instruction{
		Domain:              domain,
		Custom:              text,
		ProtocolName:        p.ProtocolName,
		ProtocolDescription: p.ProtocolDescription,
	}, nil
}
