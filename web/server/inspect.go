package server

import (
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/df07/go-animated-raytracer/pkg/core"
	"github.com/df07/go-animated-raytracer/pkg/geometry"
	"github.com/df07/go-animated-raytracer/pkg/material"
	"github.com/df07/go-animated-raytracer/pkg/renderer"
	"github.com/df07/go-animated-raytracer/pkg/scene"
)

// InspectResponse represents the JSON response for object inspection
type InspectResponse struct {
	Hit          bool                   `json:"hit"`
	MaterialType string                 `json:"materialType"`
	GeometryType string                 `json:"geometryType"`
	Index        int                    `json:"index"`
	Point        [3]float64             `json:"point"`
	Normal       [3]float64             `json:"normal"`
	Distance     float64                `json:"distance"`
	FrontFace    bool                   `json:"frontFace"`
	Properties   map[string]interface{} `json:"properties"`
}

func vecArray(v core.Vec3) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}

func hexColor(c core.Vec3) string {
	return fmt.Sprintf("#%02x%02x%02x", int(clamp01(c.X)*255), int(clamp01(c.Y)*255), int(clamp01(c.Z)*255))
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// extractMaterialInfo classifies a material and lists its shading parameters
func extractMaterialInfo(mat *material.Material) (string, map[string]interface{}) {
	properties := map[string]interface{}{
		"color":        hexColor(mat.Color),
		"albedo":       vecArray(mat.Color),
		"reflectivity": mat.Reflectivity,
		"fresnelIor":   mat.FresnelIOR,
		"fresnelPower": mat.FresnelPower,
		"dispersion":   mat.Dispersion,
		"metallic":     mat.Metallic,
		"roughness":    mat.Roughness,
		"glossiness":   mat.Glossiness,
		"pattern":      mat.Pattern.Kind.String(),
		"textured":     mat.Texture != nil,
	}

	switch {
	case mat.Reflectivity >= 1:
		return "mirror", properties
	case mat.Reflectivity > 0:
		return "reflective", properties
	case mat.Texture != nil:
		return "textured", properties
	case mat.Pattern.Kind != material.PatternSolid:
		properties["color1"] = hexColor(mat.Pattern.Color1)
		properties["color2"] = hexColor(mat.Pattern.Color2)
		properties["scale"] = mat.Pattern.Scale
		return "pattern", properties
	default:
		return "diffuse", properties
	}
}

// extractGeometryInfo describes the primitive that was hit, posed at time
func extractGeometryInfo(sceneObj *scene.Scene, hit geometry.HitRecord, time float64) map[string]interface{} {
	properties := make(map[string]interface{})

	switch hit.Kind {
	case geometry.KindSphere:
		center, radius := sceneObj.SpherePlacement(hit.Index, time)
		properties["center"] = vecArray(center)
		properties["radius"] = radius
		properties["animated"] = sceneObj.SphereTracks[hit.Index] != nil
	case geometry.KindMesh:
		pose := sceneObj.MeshPose(hit.Index, time)
		properties["position"] = vecArray(pose.Position)
		properties["rotation"] = vecArray(pose.Rotation)
		properties["scale"] = vecArray(pose.Scale)
		properties["triangleCount"] = len(sceneObj.Meshes[hit.Index].Triangles)
		properties["animated"] = sceneObj.MeshTracks[hit.Index] != nil
	}
	return properties
}

// inspectPixel casts a ray through the center of pixel (pixelX, pixelY) of
// the given frame, with row 0 at the top of the image
func inspectPixel(sceneObj *scene.Scene, frame, pixelX, pixelY int) InspectResponse {
	snapshot := sceneObj.AtFrame(frame)
	width := snapshot.SamplingConfig.Width
	height := snapshot.SamplingConfig.Height

	camera := renderer.NewCamera(snapshot.CameraConfig, float64(width)/float64(height))
	s := (float64(pixelX) + 0.5) / float64(width)
	t := (float64(height-1-pixelY) + 0.5) / float64(height)
	time := snapshot.Clock.CurrentTime
	ray := camera.GetRay(s, t).WithTime(time)

	hit, ok := snapshot.ClosestHit(ray, 0.001, math.Inf(1))
	if !ok {
		return InspectResponse{Hit: false}
	}

	materialType, materialProps := extractMaterialInfo(hit.Material)
	return InspectResponse{
		Hit:          true,
		MaterialType: materialType,
		GeometryType: hit.Kind.String(),
		Index:        hit.Index,
		Point:        vecArray(hit.Point),
		Normal:       vecArray(hit.Normal),
		Distance:     hit.T,
		FrontFace:    ray.Direction.Dot(hit.Normal) < 0,
		Properties: map[string]interface{}{
			"material": materialProps,
			"geometry": extractGeometryInfo(snapshot, hit, time),
		},
	}
}

// handleInspect handles ray casting inspection requests
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseRenderRequest(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid scene parameters: " + err.Error()})
		return
	}

	query := r.URL.Query()
	pixelX, err := strconv.Atoi(query.Get("x"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid x coordinate"})
		return
	}
	pixelY, err := strconv.Atoi(query.Get("y"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid y coordinate"})
		return
	}
	if pixelX < 0 || pixelX >= req.Width || pixelY < 0 || pixelY >= req.Height {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Pixel coordinates out of bounds"})
		return
	}
	frame, err := parseIntParam(query, "frame", 0, 0, maxFrames)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	sceneObj, err := s.createScene(req.Scene)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	applyRequest(sceneObj, req)

	writeJSON(w, http.StatusOK, inspectPixel(sceneObj, frame, pixelX, pixelY))
}
