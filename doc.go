/*
go-inferlabel adapts pretrained vision models to a media annotation label
schema.  It wires a configured inference backend to a preprocessing pipeline
and a set of per task output processors that decode raw output tensors into
structured, confidence filtered annotation labels: classifications,
detections, instance masks, keypoints and segmentations.

The library does not train models or compute gradients.  The inference
backend is an opaque collaborator registered by name, the value of this
package is the decoding of its outputs into normalized label records.

See the postprocess subpackage for the output processors and the dataset
subpackage for the iteration adapters used when batch loading images.
*/
package inferlabel
