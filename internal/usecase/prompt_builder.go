package usecase

import (
	"fmt"
	"strings"

	"tryonjewel-server/internal/domain/model"
)

// negativeConstraints is appended to every composition. Keeping it in one
// place makes the instruction string reproducible across call sites.
const negativeConstraints = "deformed jewelry, warped metal, extra fingers, " +
	"distorted gemstones, blurry product, watermark, text overlay, altered product shape"

var metalColorText = map[model.MetalColor]string{
	model.MetalYellow: "yellow gold",
	model.MetalWhite:  "white gold",
	model.MetalRose:   "rose gold",
	model.MetalSilver: "polished silver",
}

// ComposePrompt builds the provider instruction deterministically from the
// parameter set: same inputs, same string. Scene prompts, model character
// attributes and the negative-constraint text are all folded into a single
// instruction; the negative text is also returned separately for providers
// that take it as a dedicated field.
func ComposePrompt(params model.JobParams, scene *model.Scene, character *model.UserModel) (prompt, negative string) {
	var parts []string

	parts = append(parts, fmt.Sprintf(
		"Professional product photography of the %s shown in the attached image.", params.ProductType))

	switch params.PackageType {
	case model.PackageSocial:
		parts = append(parts, "Compose the shot as a social-media marketing design with generous negative space for copy.")
	case model.PackageVideo:
		parts = append(parts, "Produce a short cinematic clip presenting the piece; slow camera movement, no cuts.")
	default:
		parts = append(parts, "Studio-grade lighting, sharp focus on the piece.")
	}

	if scene != nil && scene.Prompt != "" {
		parts = append(parts, "Scene: "+scene.Prompt)
	} else if params.StyleReferencePath != "" {
		parts = append(parts, "Match the style, mood and backdrop of the attached style reference image.")
	}

	if character != nil {
		desc := characterDescription(character)
		parts = append(parts, fmt.Sprintf("The piece is worn by a model: %s.", desc))
	}

	if text, ok := metalColorText[params.MetalColorOverride]; ok {
		parts = append(parts, fmt.Sprintf("Render the metal as %s.", text))
	}

	parts = append(parts, "Preserve the exact shape, proportions and gemstones of the original piece.")
	parts = append(parts, "Do not include: "+negativeConstraints+".")

	return strings.Join(parts, " "), negativeConstraints
}

func characterDescription(c *model.UserModel) string {
	var attrs []string
	add := func(s string) {
		if s = strings.TrimSpace(s); s != "" {
			attrs = append(attrs, s)
		}
	}
	add(strings.TrimSpace(c.Age + " " + c.Gender))
	if c.SkinTone != "" {
		add(c.SkinTone + " skin")
	}
	if c.HairColor != "" || c.HairStyle != "" {
		add(strings.TrimSpace(c.HairColor+" "+c.HairStyle) + " hair")
	}
	add(c.Attributes)
	if len(attrs) == 0 {
		return "an elegant model"
	}
	return strings.Join(attrs, ", ")
}
